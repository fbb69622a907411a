package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jgoulah/vehicalc/internal/app"
	"github.com/jgoulah/vehicalc/internal/config"
	"github.com/jgoulah/vehicalc/internal/logging"
)

var (
	cfgFile string
	dbPath  string
	debug   bool

	// set by PersistentPreRunE
	cfg    *config.Config
	logger = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "vehicalc",
	Short: "Track vehicle CO2 emissions per month",
	Long: `VehiCalc records vehicle trips, converts them to kg of CO2 and keeps
monthly totals per user in a local SQLite database or CSV table.

Fuel type and efficiency give a fuel-based estimate; otherwise distance is
used, optionally with an urban stop-and-go adjustment.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database file (default is ./data.db)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// getConfigPath returns the config file path
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// setup loads the config and builds the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(getConfigPath())
	if err != nil {
		return err
	}
	if dbPath != "" {
		loaded.Database = dbPath
	}
	cfg = loaded

	level := cfg.GetLogLevel()
	if debug {
		level = "debug"
	}
	logger = logging.New(logging.Options{Level: level, Format: cfg.GetLogFormat()})
	logger.Debug().Str("command", cmd.Name()).Str("config", getConfigPath()).Msg("command started")
	return nil
}

// openApp opens the stores described by the loaded config
func openApp() (*app.App, error) {
	return app.Open(cfg, logger)
}
