package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/mitchellh/go-homedir"
	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"

	"cfhosts/pkg/utils"
)

const (
	// DefaultHostname is overridden when no hostnames are configured
	DefaultHostname = "nsarchive.e6ex.com"

	defaultTestURL = "https://cloudflaremirrors.com/archlinux/images/latest/Arch-Linux-x86_64-basic.qcow2"
)

// Config holds all application configuration
type Config struct {
	// Hostnames to point at the fastest IP
	Hostnames []string

	// File paths
	HostsFile    string
	SpeedTestDir string
	SpeedTestBin string
	ResultFile   string

	// Speed test invocation
	SpeedTestArgs []string

	LogLevel string
	FlushDNS bool
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	bin := "CloudflareST"
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}

	return &Config{
		Hostnames:     []string{DefaultHostname},
		HostsFile:     "",
		SpeedTestDir:  "CloudflareSpeedTest",
		SpeedTestBin:  bin,
		ResultFile:    "",
		SpeedTestArgs: []string{"-p", "0", "-url", defaultTestURL},
		LogLevel:      "info",
		FlushDNS:      true,
	}
}

// LoadFromFile loads configuration from INI file
func (c *Config) LoadFromFile(filename string) error {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filename)
	if err != nil {
		log.Debugf("Skipping config file %s: %s", filename, err)
		return err
	}

	section := cfg.Section("")
	c.setHostnames(section.Key("hostnames").String())
	c.HostsFile = section.Key("hostsfile").MustString(c.HostsFile)
	c.SpeedTestDir = section.Key("speedtestdir").MustString(c.SpeedTestDir)
	c.SpeedTestBin = section.Key("speedtestbin").MustString(c.SpeedTestBin)
	c.ResultFile = section.Key("resultfile").MustString(c.ResultFile)
	if v := section.Key("speedtestargs").String(); v != "" {
		c.SpeedTestArgs = strings.Fields(v)
	}
	c.LogLevel = section.Key("loglevel").MustString(c.LogLevel)
	c.FlushDNS = section.Key("flushdns").MustBool(c.FlushDNS)

	return nil
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("CFHOSTS_HOSTNAMES"); v != "" {
		c.setHostnames(v)
	}
	if v := os.Getenv("CFHOSTS_HOSTSFILE"); v != "" {
		c.HostsFile = v
	}
	if v := os.Getenv("CFHOSTS_SPEEDTESTDIR"); v != "" {
		c.SpeedTestDir = v
	}
	if v := os.Getenv("CFHOSTS_SPEEDTESTBIN"); v != "" {
		c.SpeedTestBin = v
	}
	if v := os.Getenv("CFHOSTS_RESULTFILE"); v != "" {
		c.ResultFile = v
	}
	if v := os.Getenv("CFHOSTS_SPEEDTESTARGS"); v != "" {
		c.SpeedTestArgs = strings.Fields(v)
	}
	if v := os.Getenv("CFHOSTS_LOGLEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("CFHOSTS_FLUSHDNS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.FlushDNS = b
		}
	}
}

// ResultPath returns the speed test result file, defaulting to
// result.csv inside the speed test directory
func (c *Config) ResultPath() string {
	if c.ResultFile != "" {
		return c.ResultFile
	}
	return filepath.Join(c.SpeedTestDir, "result.csv")
}

// setHostnames parses a comma separated list; an empty list keeps the default
func (c *Config) setHostnames(v string) {
	if names := utils.SplitNames(v); len(names) > 0 {
		c.Hostnames = names
	}
}

// expandPaths replaces a leading "~" with the user's home directory
func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.HostsFile, &c.SpeedTestDir, &c.SpeedTestBin, &c.ResultFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return utils.WrapError(err, "failed to expand "+*p)
		}
		*p = expanded
	}
	return nil
}

// New creates a new configuration instance
func New(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing file is fine, defaults and environment still apply
	_ = cfg.LoadFromFile(configFile)

	cfg.LoadFromEnv()

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}
