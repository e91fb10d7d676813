package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/di"
	"occupancy-forecaster/models"
)

var predictWeekday int

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Print the forecast curve of a weekday as JSON",
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictWeekday, "weekday", -1, "weekday 0 (Monday) .. 6 (Sunday); defaults to today")
}

func runPredict(cmd *cobra.Command, args []string) error {
	container, err := newContainer()
	if err != nil {
		return err
	}
	defer container.Close()

	weekday, timing, curve, err := forecastFor(cmd.Context(), container, predictWeekday)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]interface{}{
		"weekday": weekday,
		"timing":  timing,
		"curve":   curve,
	})
}

// forecastFor scrapes the current schedule and predicts weekday's curve,
// rebuilding the window when it is stale.
func forecastFor(ctx context.Context, container *di.Container, weekday int) (int, models.Timing, models.PredictionCurve, error) {
	now := container.Clock.Now()
	if weekday < 0 {
		weekday = calendar.WeekdayIndex(now)
	}
	if weekday > 6 {
		return 0, models.Timing{}, nil, fmt.Errorf("weekday must be between 0 and 6, got %d", weekday)
	}

	sample, err := container.Scraper.Scrape(ctx, calendar.StartOfWeek(now))
	if err != nil {
		return 0, models.Timing{}, nil, fmt.Errorf("scrape schedule: %w", err)
	}
	if err := container.Store.Authenticate(ctx); err != nil {
		return 0, models.Timing{}, nil, fmt.Errorf("authenticate store: %w", err)
	}

	timing := sample.Schedule.TimingFor(weekday)
	curve, err := container.ForecastService.CurveFor(ctx, now, weekday, timing)
	if err != nil {
		return 0, models.Timing{}, nil, err
	}
	return weekday, timing, curve, nil
}
