package services

import (
	"sync"
	"time"

	"occupancy-forecaster/models"
)

// Status is a point-in-time view of the tracker.
type Status struct {
	Occupancy     *int                   `json:"occupancy"`
	SampledAt     time.Time              `json:"sampled_at"`
	InHours       bool                   `json:"in_hours"`
	Schedule      *models.WeeklySchedule `json:"schedule"`
	NextWake      time.Time              `json:"next_wake"`
	LastFailure   string                 `json:"last_failure,omitempty"`
	LastFailureAt *time.Time             `json:"last_failure_at,omitempty"`
	ForecastDay   string                 `json:"forecast_day,omitempty"`
	Forecast      models.PredictionCurve `json:"forecast,omitempty"`
}

// StatusState is shared between the tracker loop and the HTTP handlers.
type StatusState struct {
	mu     sync.RWMutex
	status Status
}

func NewStatusState() *StatusState {
	return &StatusState{}
}

// Snapshot returns a copy of the current status.
func (s *StatusState) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *StatusState) RecordSample(at time.Time, occupancy int, inHours bool, schedule models.WeeklySchedule, nextWake time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Occupancy = &occupancy
	s.status.SampledAt = at
	s.status.InHours = inHours
	s.status.Schedule = &schedule
	s.status.NextWake = nextWake
}

func (s *StatusState) RecordFailure(at time.Time, stage string, err error, nextWake time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.LastFailure = stage + ": " + err.Error()
	s.status.LastFailureAt = &at
	s.status.NextWake = nextWake
}

func (s *StatusState) RecordForecast(day string, curve models.PredictionCurve) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.ForecastDay = day
	s.status.Forecast = curve
}
