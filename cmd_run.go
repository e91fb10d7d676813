package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the tracking loop and the status server",
	RunE:  runTracker,
}

func runTracker(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverDone := make(chan error, 1)
	if cfg.HTTPEnabled() {
		go func() {
			serverDone <- container.OccupancyHttpServer.Start(ctx)
		}()
	} else {
		close(serverDone)
	}

	logger.Info().Str("timezone", cfg.Timezone).Msg("occupancy forecaster starting")
	trackerErr := container.OccupancyTrackerService.Run(ctx)
	if trackerErr != nil {
		logger.Error().Err(trackerErr).Msg("tracker stopped on fatal error")
	}
	stop()

	if err := <-serverDone; err != nil {
		logger.Error().Err(err).Msg("status server failed")
	}
	logger.Info().Msg("occupancy forecaster stopped")
	return trackerErr
}
