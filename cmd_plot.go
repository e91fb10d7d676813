package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/util"
)

var (
	plotWeekday int
	plotOut     string
)

var plotCmd = &cobra.Command{
	Use:   "plot",
	Short: "Render the forecast curve of a weekday as an HTML chart",
	RunE:  runPlot,
}

func init() {
	plotCmd.Flags().IntVar(&plotWeekday, "weekday", -1, "weekday 0 (Monday) .. 6 (Sunday); defaults to today")
	plotCmd.Flags().StringVar(&plotOut, "out", "forecast.html", "output HTML file")
}

func runPlot(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	weekday, timing, curve, err := forecastFor(cmd.Context(), container, plotWeekday)
	if err != nil {
		return err
	}
	day, err := calendar.WeekdayFromIndex(weekday)
	if err != nil {
		return err
	}

	f, err := os.Create(plotOut)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", plotOut, err)
	}
	defer f.Close()

	title := fmt.Sprintf("%s forecast (%s)", day, timing)
	if err := util.PlotPredictionCurve(curve, title, f); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	logger.Info().Str("out", plotOut).Int("points", len(curve)).Msg("forecast chart generated")
	return nil
}
