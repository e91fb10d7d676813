package recorder

import (
	"context"
	"time"

	"occupancy-forecaster/models"
)

// NoopRecorder is used when no SQLite path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSample(_ context.Context, _ *SampleEvent) error     { return nil }
func (n *NoopRecorder) RecordForecast(_ context.Context, _ *ForecastEvent) error { return nil }
func (n *NoopRecorder) RecentSamples(_ context.Context, _ int) ([]SampleEvent, error) {
	return []SampleEvent{}, nil
}
func (n *NoopRecorder) ForecastFor(_ context.Context, _ time.Time) (models.PredictionCurve, error) {
	return nil, nil
}
func (n *NoopRecorder) Close() error { return nil }
