package main

import (
	"fmt"
	"os"

	"motor_dashboard/internal/config"
	"motor_dashboard/internal/logger"
	"motor_dashboard/internal/upstream"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "motordash",
	Short: "Motor Dashboard - web front end for motor health monitoring",
	Long: `Motor Dashboard renders zone, motor and device pages from the motor-monitoring
API and relays live sensor readings to the browser.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default configs/config.yml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration and builds the process logger.
func bootstrap() (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Format: cfg.LogFmt})
	return cfg, log, nil
}

func newAPIClient(cfg *config.Config) *upstream.Client {
	return upstream.NewClient(cfg.Upstream.BaseURL, upstream.WithTimeout(cfg.Upstream.Timeout))
}
