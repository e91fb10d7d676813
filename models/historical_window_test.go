package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoricalWindow_RoundTrip(t *testing.T) {
	w := NewHistoricalWindow(time.Date(2026, 10, 16, 10, 0, 0, 0, time.UTC))
	w.Append(0, Observation{Time: 900, Occupancy: 20, WeeksAway: 0}, Observation{Time: 915, Occupancy: 35, WeeksAway: 1})
	w.Append(4, Observation{Time: 1800, Occupancy: 90, WeeksAway: 2})

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var decoded HistoricalWindow
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "2026-10-12", decoded.ForDate)
	assert.Equal(t, w.PerWeekday, decoded.PerWeekday)
	assert.Equal(t, 3, decoded.Len())
	assert.True(t, decoded.IsFor(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)))
	assert.False(t, decoded.IsFor(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)))
}

func TestObservationSeries_Sort(t *testing.T) {
	s := ObservationSeries{
		{Time: 1000, WeeksAway: 1},
		{Time: 930, WeeksAway: 0},
		{Time: 900, WeeksAway: 1},
		{Time: 800, WeeksAway: 0},
	}
	s.Sort()
	assert.Equal(t, ObservationSeries{
		{Time: 800, WeeksAway: 0},
		{Time: 930, WeeksAway: 0},
		{Time: 900, WeeksAway: 1},
		{Time: 1000, WeeksAway: 1},
	}, s)
}

func TestPredictionCurve_Keys(t *testing.T) {
	c := PredictionCurve{"1000": 5, "0930": 4, "0900": 3}
	assert.Equal(t, []string{"0900", "0930", "1000"}, c.Keys())
}
