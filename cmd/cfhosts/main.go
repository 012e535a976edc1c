package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"cfhosts/internal/cli"
	"cfhosts/internal/config"
	"cfhosts/pkg/utils"
)

const (
	configFile = "cfhosts.ini"
)

var (
	sha1ver   string
	buildTime string
	repoName  string
)

func main() {
	cfg, err := config.New(configFile)
	utils.CheckFatal(err, "Failed to load configuration")

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	level, err := log.ParseLevel(cfg.LogLevel)
	if utils.CheckWarn(err, "Invalid log level") {
		level = log.InfoLevel
	}
	log.SetLevel(level)
	log.Debugf("%s: Build %s, Time %s", repoName, sha1ver, buildTime)

	runner := &cli.Runner{
		Config: cfg,
		Build:  cli.BuildInfo{Repo: repoName, Version: sha1ver, Time: buildTime},
		Log:    log.StandardLogger(),
	}
	os.Exit(runner.Execute(os.Args[1:]))
}
