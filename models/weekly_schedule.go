package models

import (
	"encoding/json"
	"fmt"
	"time"

	"occupancy-forecaster/calendar"
)

// WeeklySchedule holds the opening hours of each day of one week, indexed
// Monday=0 .. Sunday=6. It is replaced wholesale on every scrape.
type WeeklySchedule struct {
	WeekStart time.Time
	Timings   [7]Timing
}

// NewWeeklySchedule normalizes weekStart to the Monday of its week.
func NewWeeklySchedule(weekStart time.Time, timings [7]Timing) WeeklySchedule {
	return WeeklySchedule{
		WeekStart: calendar.StartOfWeek(weekStart),
		Timings:   timings,
	}
}

// TimingFor returns the timing of a weekday index; out of range indices are closed.
func (s WeeklySchedule) TimingFor(weekday int) Timing {
	if weekday < 0 || weekday > 6 {
		return ClosedTiming()
	}
	return s.Timings[weekday]
}

// Equal compares week start and all seven timings.
func (s WeeklySchedule) Equal(other WeeklySchedule) bool {
	return s.WeekStart.Equal(other.WeekStart) && s.Timings == other.Timings
}

type weeklyScheduleJSON struct {
	WeekStart string    `json:"week_start"`
	Timings   [7]Timing `json:"timings"`
}

func (s WeeklySchedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(weeklyScheduleJSON{
		WeekStart: calendar.DateKey(s.WeekStart),
		Timings:   s.Timings,
	})
}

func (s *WeeklySchedule) UnmarshalJSON(data []byte) error {
	var in weeklyScheduleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	weekStart, err := calendar.ParseDateKey(in.WeekStart, time.UTC)
	if err != nil {
		return fmt.Errorf("failed to decode schedule: %w", err)
	}
	s.WeekStart = weekStart
	s.Timings = in.Timings
	return nil
}
