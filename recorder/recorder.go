// Package recorder keeps a local history of samples and forecasts for analysis.
package recorder

import (
	"context"
	"time"

	"occupancy-forecaster/models"
)

// SampleEvent is one scraped occupancy reading.
type SampleEvent struct {
	At        time.Time `json:"at"`
	Occupancy int       `json:"occupancy"`
	InHours   bool      `json:"in_hours"`
}

// ForecastEvent is one day's forecast curve.
type ForecastEvent struct {
	Day   time.Time
	Curve models.PredictionCurve
}

// Recorder persists historical data for analysis.
type Recorder interface {
	RecordSample(ctx context.Context, evt *SampleEvent) error
	RecordForecast(ctx context.Context, evt *ForecastEvent) error
	RecentSamples(ctx context.Context, limit int) ([]SampleEvent, error)
	// ForecastFor returns the latest curve recorded for day, or nil.
	ForecastFor(ctx context.Context, day time.Time) (models.PredictionCurve, error)
	Close() error
}
