package main

import (
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/mfreeman451/passpersist/pkg/config"
)

// Option defines command line options. Zero values leave the config file
// setting in place.
type Option struct {
	Config  string `short:"c" long:"config" description:"path to the JSON config file" default:"/etc/passpersist/passpersist.json"`
	BaseOID string `short:"b" long:"base-oid" description:"override the base OID"`
	Refresh int    `short:"r" long:"refresh" description:"override the refresh interval, in seconds"`
	Dump    bool   `long:"dump" description:"answer the DUMP debug directive"`
	Debug   bool   `short:"d" long:"debug" description:"debug mode"`
	Version bool   `short:"v" long:"version" description:"display the version and exit"`
}

// parseCLI returns parsed command-line flags in Option struct.
func parseCLI(args []string) (*Option, error) {
	opt := &Option{}

	parser := flags.NewParser(opt, flags.Default)
	parser.Name = "passpersist"
	parser.Usage = "[OPTIONS]"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	return opt, nil
}

func isHelp(err error) bool {
	return flags.WroteHelp(err)
}

// apply copies flag overrides onto cfg.
func (o *Option) apply(cfg *config.Config) {
	if o.BaseOID != "" {
		cfg.BaseOID = o.BaseOID
	}

	if o.Refresh > 0 {
		cfg.Refresh = config.Duration(time.Duration(o.Refresh) * time.Second)
	}

	if o.Dump {
		cfg.EnableDump = true
	}

	if o.Debug {
		cfg.LogLevel = "debug"
	}
}
