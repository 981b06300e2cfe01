package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfreeman451/passpersist/pkg/config"
	"github.com/mfreeman451/passpersist/pkg/logger"
)

func TestParseCLI(t *testing.T) {
	opt, err := parseCLI([]string{"-c", "/tmp/pp.json", "--base-oid", ".1.3.6.1.4.1.8072.9999", "-r", "30", "--dump", "-d"})
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pp.json", opt.Config)

	cfg := config.Config{BaseOID: ".1.3.6.1.4.1.1", Refresh: config.Duration(time.Minute), LogLevel: "info"}
	opt.apply(&cfg)

	assert.Equal(t, ".1.3.6.1.4.1.8072.9999", cfg.BaseOID)
	assert.Equal(t, 30*time.Second, time.Duration(cfg.Refresh))
	assert.True(t, cfg.EnableDump)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestParseCLI_Defaults(t *testing.T) {
	opt, err := parseCLI(nil)
	require.NoError(t, err)

	assert.Equal(t, "/etc/passpersist/passpersist.json", opt.Config)

	cfg := config.Config{BaseOID: ".1.3.6.1.4.1.1"}
	opt.apply(&cfg)

	assert.Equal(t, ".1.3.6.1.4.1.1", cfg.BaseOID)
	assert.Zero(t, cfg.Refresh)
}

func TestParseCLI_UnknownFlag(t *testing.T) {
	_, err := parseCLI([]string{"--nope"})
	require.Error(t, err)
	assert.False(t, isHelp(err))
}

func writeConfig(t *testing.T, dir, iniPath string) string {
	t.Helper()

	path := filepath.Join(dir, "passpersist.json")
	data := `{
		"base_oid": ".1.3.6.1.4.1.8072.1.3.1.2",
		"refresh": 60,
		"source": {"type": "ini", "config": {"path": "` + iniPath + `"}}
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	return path
}

func TestRun_ServesIniFile(t *testing.T) {
	dir := t.TempDir()
	iniPath := filepath.Join(dir, "sip.conf")
	require.NoError(t, os.WriteFile(iniPath, []byte("[general]\nport = 5060\n"), 0o600))

	opt := &Option{Config: writeConfig(t, dir, iniPath)}

	in := strings.NewReader(strings.Join([]string{
		"PING",
		"get", ".1.3.6.1.4.1.8072.1.3.1.2.1.1.2.0",
		"getnext", ".1.3.6.1.4.1.8072.1.3.1.2",
		"set", ".1.3.6.1.4.1.8072.1.3.1.2.1.1.2.0", "INTEGER 5061",
		"",
	}, "\n"))

	var out bytes.Buffer

	require.NoError(t, run(context.Background(), opt, logger.Discard(), in, &out))

	assert.Equal(t, strings.Join([]string{
		"PONG",
		".1.3.6.1.4.1.8072.1.3.1.2.1.1.2.0", "INTEGER", "5060",
		".1.3.6.1.4.1.8072.1.3.1.2.1.0.1.0", "STRING", "general",
		"not-writable",
		"",
	}, "\n"), out.String())
}

func TestRun_InitialLoadFailure(t *testing.T) {
	dir := t.TempDir()
	opt := &Option{Config: writeConfig(t, dir, filepath.Join(dir, "missing.conf"))}

	var out bytes.Buffer

	err := run(context.Background(), opt, logger.Discard(), strings.NewReader("PING\n"), &out)
	require.Error(t, err)
	assert.Empty(t, out.String(), "nothing is served when the first load fails")
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"base_oid": ""}`), 0o600))

	err := run(context.Background(), &Option{Config: path}, logger.Discard(), strings.NewReader(""), &bytes.Buffer{})
	require.Error(t, err)
}
