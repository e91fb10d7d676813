package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"occupancy-forecaster/api/scraper"
	"occupancy-forecaster/calendar"
	"occupancy-forecaster/dao"
	"occupancy-forecaster/metrics"
	"occupancy-forecaster/models"
	"occupancy-forecaster/recorder"
	"occupancy-forecaster/scheduler"
	"occupancy-forecaster/window"
)

// OccupancyTrackerService samples the venue on the adaptive schedule and
// pushes samples, schedules and forecasts to the store.
type OccupancyTrackerService struct {
	scraper   scraper.VenueScraper
	store     dao.Store
	forecasts *ForecastService
	recorder  recorder.Recorder
	state     *StatusState
	policy    scheduler.Policy
	clock     calendar.Clock
	after     func(time.Duration) <-chan time.Time
	logger    zerolog.Logger
}

// NewOccupancyTrackerService constructs a new tracker with dependencies.
func NewOccupancyTrackerService(
	venueScraper scraper.VenueScraper,
	store dao.Store,
	forecasts *ForecastService,
	rec recorder.Recorder,
	state *StatusState,
	policy scheduler.Policy,
	clock calendar.Clock,
	logger zerolog.Logger,
) *OccupancyTrackerService {
	return &OccupancyTrackerService{
		scraper:   venueScraper,
		store:     store,
		forecasts: forecasts,
		recorder:  rec,
		state:     state,
		policy:    policy,
		clock:     clock,
		after:     time.After,
		logger:    logger.With().Str("component", "OccupancyTrackerService").Logger(),
	}
}

// IsFatal reports whether err leaves the persisted state unusable.
func IsFatal(err error) bool {
	return errors.Is(err, window.ErrUnexpectedShape) || errors.Is(err, window.ErrCorruptSnapshot)
}

// Run loops over cycles until ctx is cancelled or a fatal error occurs.
func (s *OccupancyTrackerService) Run(ctx context.Context) error {
	s.logger.Info().Msg("tracker started")
	for {
		if _, err := s.RunCycle(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			s.logger.Info().Msg("tracker stopped")
			return nil
		}
	}
}

// RunCycle performs one sample-write-sleep cycle and returns the delay it
// waited on. Only fatal errors are returned.
func (s *OccupancyTrackerService) RunCycle(ctx context.Context) (time.Duration, error) {
	metrics.CyclesTotal.Inc()
	now := s.clock.Now()

	sample, err := s.scraper.Scrape(ctx, calendar.StartOfWeek(now))
	if err != nil {
		return s.fail(ctx, now, "scrape", err), nil
	}
	schedule := sample.Schedule

	delay, err := scheduler.NextDelay(now, &schedule, s.policy)
	if err != nil {
		return s.fail(ctx, now, "schedule", err), nil
	}
	wake := s.after(delay)
	metrics.NextDelaySeconds.Set(delay.Seconds())

	if err := s.store.Authenticate(ctx); err != nil {
		return s.fail(ctx, now, "auth", err), nil
	}

	inHours, err := scheduler.IsStandardInterval(now, &schedule)
	if err != nil {
		return s.fail(ctx, now, "schedule", err), nil
	}

	metrics.LatestOccupancy.Set(float64(sample.Occupancy))
	s.state.RecordSample(now, sample.Occupancy, inHours, schedule, now.Add(delay))
	if err := s.recorder.RecordSample(ctx, &recorder.SampleEvent{At: now, Occupancy: sample.Occupancy, InHours: inHours}); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record sample")
	}
	s.logger.Info().
		Int("occupancy", sample.Occupancy).
		Bool("in_hours", inHours).
		Dur("next_delay", delay).
		Msg("sampled")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		fatalErr error
	)
	dispatch := func(name string, fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := fn()
			if err == nil {
				return
			}
			if IsFatal(err) {
				mu.Lock()
				fatalErr = err
				mu.Unlock()
				return
			}
			s.logger.Error().Err(err).Str("task", name).Msg("dispatched task failed")
		}()
	}

	dispatch("schedule", func() error { return s.writeSchedule(ctx, now, schedule) })
	if inHours {
		dispatch("sample", func() error { return s.writeSample(ctx, now, sample.Occupancy) })
		dispatch("forecast", func() error {
			_, err := s.forecasts.RunDaily(ctx, now, schedule.TimingFor(calendar.WeekdayIndex(now)))
			return err
		})
	}

	select {
	case <-wake:
	case <-ctx.Done():
	}
	wg.Wait()

	if fatalErr != nil {
		return delay, fmt.Errorf("tracker cannot continue: %w", fatalErr)
	}
	return delay, nil
}

func (s *OccupancyTrackerService) writeSchedule(ctx context.Context, now time.Time, schedule models.WeeklySchedule) error {
	doc, err := json.Marshal(schedule)
	if err != nil {
		return err
	}
	for _, path := range []string{dao.SchedulePath(now), dao.LATEST_SCHEDULE_PATH} {
		if err := s.store.Set(ctx, path, doc); err != nil {
			metrics.StoreWriteErrorsTotal.WithLabelValues("schedule").Inc()
			return fmt.Errorf("failed to write schedule %s: %w", path, err)
		}
	}
	return nil
}

func (s *OccupancyTrackerService) writeSample(ctx context.Context, now time.Time, occupancy int) error {
	patch, err := dao.SamplePatch(now, occupancy)
	if err != nil {
		return err
	}
	path := dao.DayDataPath(now)
	if err := s.store.Update(ctx, path, patch); err != nil {
		metrics.StoreWriteErrorsTotal.WithLabelValues("sample").Inc()
		return fmt.Errorf("failed to write sample %s: %w", path, err)
	}
	// The latest mirror only ever holds the most recent sample.
	latest := dao.LatestSamplePath(now)
	if err := s.store.Set(ctx, latest, patch); err != nil {
		metrics.StoreWriteErrorsTotal.WithLabelValues("sample").Inc()
		return fmt.Errorf("failed to write sample %s: %w", latest, err)
	}
	return nil
}

// fail logs a failed stage and waits the error interval.
func (s *OccupancyTrackerService) fail(ctx context.Context, now time.Time, stage string, err error) time.Duration {
	delay := s.policy.ErrorInterval
	metrics.CycleFailuresTotal.WithLabelValues(stage).Inc()
	metrics.NextDelaySeconds.Set(delay.Seconds())
	s.state.RecordFailure(now, stage, err, now.Add(delay))
	s.logger.Warn().Err(err).Str("stage", stage).Dur("retry_in", delay).Msg("cycle failed")

	select {
	case <-s.after(delay):
	case <-ctx.Done():
	}
	return delay
}
