package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/aleister1102/changewatch/internal/config"
	"github.com/aleister1102/changewatch/internal/logger"
	"github.com/aleister1102/changewatch/internal/reporter"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every command needs once flags are parsed.
type app struct {
	configPath   string
	envFile      string
	outputFormat string
	logLevel     string

	cfg      *config.GlobalConfig
	logger   zerolog.Logger
	reporter *reporter.ConsoleReporter
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "changewatch",
		Short: "Watch upstream API documentation and alert dependent services",
		Long: `changewatch fetches the provider changelogs listed in a registry, detects pages that
changed since the last run, classifies the changes, maps them onto the dependencies of
known consumers and decides whether their owners need to be alerted.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+", ./config.yaml or ./config.json)")
	flags.StringVar(&a.envFile, "env-file", ".env", "dotenv file with secrets, ignored if missing")
	flags.StringVarP(&a.outputFormat, "output", "o", string(reporter.FormatText), "output format: text, json")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	rootCmd.AddCommand(
		newDiscoverCmd(a),
		newCheckSourcesCmd(a),
		newFullCheckCmd(a),
		newTestAlertCmd(a),
		newWatchCmd(a),
		newHistoryCmd(a),
	)
	return rootCmd
}

// init loads secrets, configuration and the logger. Secrets from the environment are
// copied into the config here and nowhere else.
func (a *app) init() error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	bootLogger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.LoadGlobalConfig(a.configPath, bootLogger)
	if err != nil {
		return err
	}
	cfg.ApplyEnvOverrides(os.Getenv)
	if a.logLevel != "" {
		cfg.LogConfig.LogLevel = a.logLevel
	}
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}

	log, err := logger.New(cfg.LogConfig)
	if err != nil {
		return err
	}

	rep, err := reporter.NewConsoleReporter(os.Stdout, reporter.Format(a.outputFormat))
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = log
	a.reporter = rep
	return nil
}
