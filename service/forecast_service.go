package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/dao"
	"occupancy-forecaster/metrics"
	"occupancy-forecaster/models"
	"occupancy-forecaster/predictor"
	"occupancy-forecaster/recorder"
	"occupancy-forecaster/window"
)

// ErrNoWindow is returned when no historical window has been persisted yet.
var ErrNoWindow = errors.New("no historical window available")

// ForecastService produces the daily forecast curve from the historical window.
type ForecastService struct {
	refresher *window.Refresher
	files     *window.FileStore
	regressor *predictor.Regressor
	store     dao.Store
	recorder  recorder.Recorder
	state     *StatusState
	frequency int
	logger    zerolog.Logger
}

// NewForecastService constructs a new ForecastService with dependencies.
func NewForecastService(
	refresher *window.Refresher,
	files *window.FileStore,
	regressor *predictor.Regressor,
	store dao.Store,
	rec recorder.Recorder,
	state *StatusState,
	frequency int,
	logger zerolog.Logger,
) *ForecastService {
	return &ForecastService{
		refresher: refresher,
		files:     files,
		regressor: regressor,
		store:     store,
		recorder:  rec,
		state:     state,
		frequency: frequency,
		logger:    logger.With().Str("component", "ForecastService").Logger(),
	}
}

// RunDaily writes today's curve to the store at most once per day. It returns
// nil without error when the curve was already written or the venue is closed.
func (s *ForecastService) RunDaily(ctx context.Context, now time.Time, timing models.Timing) (models.PredictionCurve, error) {
	snap, rebuilt, err := s.refresher.Ensure(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh window: %w", err)
	}
	if rebuilt {
		metrics.WindowRebuildsTotal.Inc()
	}
	if snap.PredictedOn(now) {
		return nil, nil
	}
	if !timing.IsOpen() {
		return nil, nil
	}

	curve, err := s.Curve(snap.Window, calendar.WeekdayIndex(now), timing)
	if errors.Is(err, predictor.ErrNoObservations) {
		s.logger.Warn().Str("day", calendar.DateKey(now)).Msg("no history for weekday, skipping forecast")
		return nil, s.refresher.MarkPredicted(snap, now)
	}
	if err != nil {
		return nil, err
	}

	doc, err := json.Marshal(curve)
	if err != nil {
		return nil, err
	}
	path := dao.PredictionPath(now)
	if err := s.store.Set(ctx, path, doc); err != nil {
		metrics.StoreWriteErrorsTotal.WithLabelValues("prediction").Inc()
		return nil, fmt.Errorf("failed to write forecast %s: %w", path, err)
	}
	if err := s.refresher.MarkPredicted(snap, now); err != nil {
		return nil, err
	}

	metrics.ForecastsTotal.Inc()
	s.state.RecordForecast(calendar.DateKey(now), curve)
	if err := s.recorder.RecordForecast(ctx, &recorder.ForecastEvent{Day: now, Curve: curve}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record forecast")
	}
	s.logger.Info().Str("path", path).Int("points", len(curve)).Msg("forecast written")
	return curve, nil
}

// Curve predicts the curve of one weekday between the timing's hours.
func (s *ForecastService) Curve(w *models.HistoricalWindow, weekday int, timing models.Timing) (models.PredictionCurve, error) {
	opening, closing, open := timing.Hours()
	if !open {
		return models.PredictionCurve{}, nil
	}
	last := models.HHMMFromOffset(closing)
	if timing.WrapsMidnight() {
		// Hours after midnight belong to the next weekday's curve.
		last = predictor.END_OF_DAY
	}
	return s.regressor.PredictRange(w.Series(weekday), models.HHMMFromOffset(opening), last, s.frequency)
}

// Preview computes a weekday's curve from the persisted window without
// touching the remote store.
func (s *ForecastService) Preview(weekday int, timing models.Timing) (models.PredictionCurve, error) {
	snap, err := s.files.Load()
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoWindow
	}
	return s.Curve(snap.Window, weekday, timing)
}

// CurveFor refreshes the window when stale and predicts the given weekday.
func (s *ForecastService) CurveFor(ctx context.Context, now time.Time, weekday int, timing models.Timing) (models.PredictionCurve, error) {
	snap, rebuilt, err := s.refresher.Ensure(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh window: %w", err)
	}
	if rebuilt {
		metrics.WindowRebuildsTotal.Inc()
	}
	return s.Curve(snap.Window, weekday, timing)
}
