package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfhosts.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNewDefaults(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "missing.ini"))
	require.NoError(t, err)

	assert.Equal(t, []string{DefaultHostname}, cfg.Hostnames)
	assert.Equal(t, "", cfg.HostsFile)
	assert.Equal(t, filepath.Join("CloudflareSpeedTest", "result.csv"), cfg.ResultPath())
	assert.Equal(t, []string{"-p", "0", "-url", defaultTestURL}, cfg.SpeedTestArgs)
	assert.True(t, cfg.FlushDNS)
}

func TestNewFromFile(t *testing.T) {
	path := writeConfig(t, `
HostNames = a.example.com, b.example.com
hostsfile = /tmp/hosts
speedtestdir = /opt/cfst
speedtestargs = -n 200 -t 4
FlushDNS = false
loglevel = debug
`)

	cfg, err := New(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.example.com", "b.example.com"}, cfg.Hostnames)
	assert.Equal(t, "/tmp/hosts", cfg.HostsFile)
	assert.Equal(t, filepath.Join("/opt/cfst", "result.csv"), cfg.ResultPath())
	assert.Equal(t, []string{"-n", "200", "-t", "4"}, cfg.SpeedTestArgs)
	assert.False(t, cfg.FlushDNS)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEmptyHostnamesKeepDefault(t *testing.T) {
	cfg, err := New(writeConfig(t, "hostnames = ,\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultHostname}, cfg.Hostnames)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "hostnames = file.example.com\nresultfile = /tmp/a.csv\n")
	t.Setenv("CFHOSTS_HOSTNAMES", "env.example.com")
	t.Setenv("CFHOSTS_FLUSHDNS", "no-a-bool")
	t.Setenv("CFHOSTS_RESULTFILE", "~/result.csv")

	cfg, err := New(path)
	require.NoError(t, err)

	home, err := homedir.Dir()
	require.NoError(t, err)
	assert.Equal(t, []string{"env.example.com"}, cfg.Hostnames)
	assert.Equal(t, filepath.Join(home, "result.csv"), cfg.ResultPath())
	assert.True(t, cfg.FlushDNS)
}
