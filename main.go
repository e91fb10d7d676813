package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"occupancy-forecaster/config"
	"occupancy-forecaster/di"
	"occupancy-forecaster/logging"
)

var (
	configPath string
	logger     zerolog.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "occupancy-forecaster",
	Short: "Samples venue occupancy and forecasts the day ahead",
	Long:  "occupancy-forecaster scrapes a venue's live occupancy on an adaptive schedule, stores the samples and publishes a daily weighted k-NN forecast.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file (overrides $"+config.CONFIG_PATH_ENV+")")
	rootCmd.AddCommand(runCmd, predictCmd, plotCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads configuration (called by commands that need it)
func loadConfig() error {
	// .env is optional
	_ = godotenv.Load()

	var err error
	path := config.ResolvePath(configPath, rootCmd.PersistentFlags().Changed("config"))
	cfg, err = config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger = logging.Setup(cfg.Environment, cfg.Log.Level)
	return nil
}

func newContainer() (*di.Container, error) {
	if err := loadConfig(); err != nil {
		return nil, err
	}
	return di.NewContainer(cfg, logger)
}
