// Package main implements the drivingschool CLI. It runs exam trials against
// the simulated world, replays host command scripts and inspects the trial
// history kept by the storage backend.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/soz/drivingschool/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// module defs - BuildDate can be set at build time via ldflags
var (
	CurrentVersion = "0.0.1"
	BuildDate      = "unknown"

	AppName = "drivingschool"
)

var (
	// configDir holds drivingschool.cfg.json
	configDir string
	// logLevel overrides the configured level when set
	logLevel string
	// logToFile sends logs to logsDir instead of stdout
	logToFile bool
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "drivingschool",
	Short: "Driving school exam orchestrator",
	Long: `drivingschool runs timed driving exams: it spawns the trial vehicle and
instructor, walks the participant through a random checkpoint route and fails
the trial when a penalty rule is broken.

Trials run against an in-process simulated world. Finished trials are stored
by the configured storage backend and, when enabled, written to InfluxDB.`,
	Version:           CurrentVersion + " (" + BuildDate + ")",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory containing "+config.ConfigFileName)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logToFile, "log-file", false, "write logs to a file in logsDir instead of stdout")
}

// loadConfig reads the config file. A missing file leaves the defaults in place.
func loadConfig(_ *cobra.Command, _ []string) error {
	if err := config.Load(configDir); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
	}
	if logLevel != "" {
		viper.Set("logLevel", logLevel)
	}
	return nil
}
