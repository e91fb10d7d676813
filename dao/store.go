// Package dao defines the remote store contract and the paths written to it.
package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"occupancy-forecaster/calendar"
	"occupancy-forecaster/models"
)

const (
	WEEK_DATA_PATH_FORMAT  = "data/%s"
	DAY_DATA_PATH_FORMAT   = "data/%s/%d"
	PREDICTION_PATH_FORMAT = "prediction/%s/%d"
	SCHEDULE_PATH_FORMAT   = "schedule/%s"
	LATEST_SAMPLE_FORMAT   = "latest/%s"
	LATEST_SCHEDULE_PATH   = "latest/schedule"
)

// Store is a hierarchical JSON document store. Paths are relative to the
// store's configured root.
type Store interface {
	// Authenticate prepares the store for a batch of requests.
	Authenticate(ctx context.Context) error
	// Get returns the document at path; ok is false when nothing is stored there.
	Get(ctx context.Context, path string) (doc json.RawMessage, ok bool, err error)
	// Set replaces the document at path.
	Set(ctx context.Context, path string, doc json.RawMessage) error
	// Update merges the top-level fields of patch into the document at path.
	Update(ctx context.Context, path string, patch json.RawMessage) error
}

// WeekDataPath holds all raw samples of the week starting weekStart.
func WeekDataPath(weekStart time.Time) string {
	return fmt.Sprintf(WEEK_DATA_PATH_FORMAT, calendar.WeekKey(weekStart))
}

// DayDataPath holds the raw samples of one day.
func DayDataPath(day time.Time) string {
	return fmt.Sprintf(DAY_DATA_PATH_FORMAT, calendar.WeekKey(day), calendar.WeekdayIndex(day))
}

// PredictionPath holds the forecast curve of one day.
func PredictionPath(day time.Time) string {
	return fmt.Sprintf(PREDICTION_PATH_FORMAT, calendar.WeekKey(day), calendar.WeekdayIndex(day))
}

// SchedulePath holds the schedule snapshot of the week containing day.
func SchedulePath(day time.Time) string {
	return fmt.Sprintf(SCHEDULE_PATH_FORMAT, calendar.WeekKey(day))
}

// LatestSamplePath mirrors the most recent sample of one calendar date.
func LatestSamplePath(day time.Time) string {
	return fmt.Sprintf(LATEST_SAMPLE_FORMAT, calendar.DateKey(day))
}

// SamplePatch is the single-sample update document {"HHMM": occupancy}.
func SamplePatch(at time.Time, occupancy int) (json.RawMessage, error) {
	return json.Marshal(map[string]int{models.HHMMFromTime(at).String(): occupancy})
}
