package models

import (
	"sort"
	"time"

	"occupancy-forecaster/calendar"
)

// Observation is one occupancy sample tagged with how many weeks before the
// predicted week it was taken (0 = the most recent week).
type Observation struct {
	Time      HHMM   `json:"time"`
	Occupancy uint16 `json:"occupancy"`
	WeeksAway int    `json:"weeks_away"`
}

// ObservationSeries is ordered by weeks away, then by time of day.
type ObservationSeries []Observation

// Sort restores the canonical order.
func (s ObservationSeries) Sort() {
	sort.SliceStable(s, func(i, j int) bool {
		if s[i].WeeksAway != s[j].WeeksAway {
			return s[i].WeeksAway < s[j].WeeksAway
		}
		return s[i].Time < s[j].Time
	})
}

// HistoricalWindow groups past observations by weekday for the week starting ForDate.
type HistoricalWindow struct {
	PerWeekday [7]ObservationSeries `json:"per_weekday"`
	ForDate    string               `json:"for_date"`
}

// NewHistoricalWindow returns an empty window for the week containing forDate.
func NewHistoricalWindow(forDate time.Time) *HistoricalWindow {
	w := &HistoricalWindow{ForDate: calendar.WeekKey(forDate)}
	for i := range w.PerWeekday {
		w.PerWeekday[i] = ObservationSeries{}
	}
	return w
}

// Series returns the observations for a weekday index.
func (w *HistoricalWindow) Series(weekday int) ObservationSeries {
	if weekday < 0 || weekday > 6 {
		return nil
	}
	return w.PerWeekday[weekday]
}

// Append adds observations to a weekday's series.
func (w *HistoricalWindow) Append(weekday int, obs ...Observation) {
	w.PerWeekday[weekday] = append(w.PerWeekday[weekday], obs...)
}

// IsFor reports whether the window was assembled for the week containing t.
func (w *HistoricalWindow) IsFor(t time.Time) bool {
	return w.ForDate == calendar.WeekKey(t)
}

// Len is the total number of observations.
func (w *HistoricalWindow) Len() int {
	n := 0
	for _, s := range w.PerWeekday {
		n += len(s)
	}
	return n
}
