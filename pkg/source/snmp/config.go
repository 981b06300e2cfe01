package snmp

import (
	"errors"
	"time"

	"github.com/mfreeman451/passpersist/pkg/config"
	"github.com/mfreeman451/passpersist/pkg/oid"
)

// SNMPVersion represents supported SNMP versions.
type SNMPVersion string

const (
	Version1  SNMPVersion = "v1"
	Version2c SNMPVersion = "v2c"

	defaultPort           = 161
	defaultTimeout        = 5 * time.Second
	defaultRetries        = 3
	defaultMaxRepetitions = 25
)

var (
	errMissingHost        = errors.New("target host is required")
	errMissingRoot        = errors.New("root OID is required")
	errUnsupportedVersion = errors.New("unsupported SNMP version")
)

// Config is the JSON configuration of the snmp source.
type Config struct {
	Host           string          `json:"host"`
	Port           uint16          `json:"port,omitempty"`
	Community      string          `json:"community"`
	Version        SNMPVersion     `json:"version,omitempty"`
	Timeout        config.Duration `json:"timeout,omitempty"`
	Retries        int             `json:"retries,omitempty"`
	MaxRepetitions uint32          `json:"max_repetitions,omitempty"`
	Root           string          `json:"root"` // remote subtree, e.g. .1.3.6.1.2.1.2.2
}

// validate fills defaults and checks required fields.
func (c *Config) validate() error {
	if c.Host == "" {
		return errMissingHost
	}

	if c.Root == "" {
		return errMissingRoot
	}

	if _, err := oid.NewBase(c.Root); err != nil {
		return err
	}

	if c.Port == 0 {
		c.Port = defaultPort
	}

	if c.Version == "" {
		c.Version = Version2c
	}

	if c.Community == "" {
		c.Community = "public"
	}

	if c.Timeout == 0 {
		c.Timeout = config.Duration(defaultTimeout)
	}

	if c.Retries == 0 {
		c.Retries = defaultRetries
	}

	if c.MaxRepetitions == 0 {
		c.MaxRepetitions = defaultMaxRepetitions
	}

	return nil
}
