package main

import (
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/commitminer/internal/app"
	"github.com/maxbolgarin/commitminer/internal/classifier"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	languageSet, starsSet, reposSet, commitsSet, outputSet, modeSet, levelSet bool

	configPath = kingpin.Flag("config", "path to YAML config file").Short('c').String()
	envFile    = kingpin.Flag("env-file", "path to .env file with credentials").Default(".env").String()

	language = kingpin.Flag("language", "repository language (default C)").Short('l').IsSetByUser(&languageSet).String()
	stars    = kingpin.Flag("stars", "minimum number of stars (default 1000)").Short('s').IsSetByUser(&starsSet).Int()
	repos    = kingpin.Flag("repos", "maximum number of repositories (default 10)").Short('r').IsSetByUser(&reposSet).Int()
	commits  = kingpin.Flag("commits", "maximum number of commits per repository (default 100)").Short('n').IsSetByUser(&commitsSet).Int()
	output   = kingpin.Flag("output", "output directory (default results)").Short('o').IsSetByUser(&outputSet).String()
	mode     = kingpin.Flag("classifier", "classifier mode: auto, keyword or agent").IsSetByUser(&modeSet).Enum("auto", "keyword", "agent")
	logLevel = kingpin.Flag("log-level", "log level: debug, info, warn, error").IsSetByUser(&levelSet).String()
)

func main() {
	kingpin.Version(strings.Join([]string{Version, Branch, Commit, BuildDate}, " "))
	kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()
	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	cfg, err := app.LoadConfig(*configPath, *envFile)
	if err != nil {
		return erro.Wrap(err, "load config")
	}
	applyFlags(&cfg)
	initLogger(cfg.LogLevel)

	miner, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "new miner")
	}

	if _, err := miner.Run(ctx); err != nil {
		return erro.Wrap(err, "run")
	}

	return nil
}

// applyFlags overrides config values with flags given on the command line
func applyFlags(cfg *app.Config) {
	if languageSet {
		cfg.Search.Language = *language
	}
	if starsSet {
		cfg.Search.MinStars = *stars
	}
	if reposSet {
		cfg.Search.MaxRepositories = *repos
	}
	if commitsSet {
		cfg.Search.CommitsPerRepository = *commits
	}
	if outputSet {
		cfg.Output.Dir = *output
	}
	if modeSet {
		cfg.Classifier.Mode = classifier.Mode(*mode)
	}
	if levelSet {
		cfg.LogLevel = *logLevel
	}
}

func initLogger(level string) {
	logCfg := logze.C().WithConsole()
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		logCfg = logCfg.WithLevel(logze.LevelDebug)
	case "warn", "warning":
		logCfg = logCfg.WithLevel(logze.LevelWarn)
	case "error":
		logCfg = logCfg.WithLevel(logze.LevelError)
	default:
		logCfg = logCfg.WithLevel(logze.LevelInfo)
	}
	logze.Init(logCfg)
}
