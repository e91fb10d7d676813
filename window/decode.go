// Package window assembles and persists the multi-week history the
// predictor learns from.
package window

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"occupancy-forecaster/models"
)

// ErrUnexpectedShape marks remote week data that is neither an array nor an
// object of weekday entries. It is not recoverable.
var ErrUnexpectedShape = errors.New("unexpected week data shape")

type PayloadKind int

const (
	PayloadMissing PayloadKind = iota
	PayloadPopulated
	PayloadSparse
)

func (k PayloadKind) String() string {
	switch k {
	case PayloadPopulated:
		return "populated"
	case PayloadSparse:
		return "sparse"
	default:
		return "missing"
	}
}

// WeekPayload is one week of raw samples as returned by the store: either an
// array indexed by weekday or an object keyed by weekday index.
type WeekPayload struct {
	Kind      PayloadKind
	Populated []json.RawMessage
	Sparse    map[int]json.RawMessage
}

// DecodeWeek classifies a raw week document.
func DecodeWeek(raw json.RawMessage) (WeekPayload, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return WeekPayload{Kind: PayloadMissing}, nil
	}

	switch trimmed[0] {
	case '[':
		var days []json.RawMessage
		if err := json.Unmarshal(trimmed, &days); err != nil {
			return WeekPayload{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if len(days) > 7 {
			return WeekPayload{}, fmt.Errorf("%w: %d weekday entries", ErrUnexpectedShape, len(days))
		}
		return WeekPayload{Kind: PayloadPopulated, Populated: days}, nil
	case '{':
		var keyed map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &keyed); err != nil {
			return WeekPayload{}, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		days := make(map[int]json.RawMessage, len(keyed))
		for key, day := range keyed {
			index, err := strconv.Atoi(key)
			if err != nil || index < 0 || index > 6 {
				return WeekPayload{}, fmt.Errorf("%w: weekday key %q", ErrUnexpectedShape, key)
			}
			days[index] = day
		}
		return WeekPayload{Kind: PayloadSparse, Sparse: days}, nil
	default:
		return WeekPayload{}, fmt.Errorf("%w: %.32s", ErrUnexpectedShape, trimmed)
	}
}

// Series converts the payload into per-weekday observations, each tagged with weeksAway.
func (p WeekPayload) Series(weeksAway int) ([7]models.ObservationSeries, error) {
	var out [7]models.ObservationSeries
	switch p.Kind {
	case PayloadPopulated:
		for index, day := range p.Populated {
			obs, err := decodeDay(day, weeksAway)
			if err != nil {
				return out, fmt.Errorf("weekday %d: %w", index, err)
			}
			out[index] = obs
		}
	case PayloadSparse:
		for index, day := range p.Sparse {
			obs, err := decodeDay(day, weeksAway)
			if err != nil {
				return out, fmt.Errorf("weekday %d: %w", index, err)
			}
			out[index] = obs
		}
	}
	return out, nil
}

// decodeDay reads {"HHMM": occupancy, ...}.
func decodeDay(raw json.RawMessage, weeksAway int) (models.ObservationSeries, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var samples map[string]int
	if err := json.Unmarshal(trimmed, &samples); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
	}

	series := make(models.ObservationSeries, 0, len(samples))
	for key, occupancy := range samples {
		at, err := models.ParseHHMM(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedShape, err)
		}
		if occupancy < 0 || occupancy > 100 {
			return nil, fmt.Errorf("%w: occupancy %d at %s", ErrUnexpectedShape, occupancy, key)
		}
		series = append(series, models.Observation{
			Time:      at,
			Occupancy: uint16(occupancy),
			WeeksAway: weeksAway,
		})
	}
	series.Sort()
	return series, nil
}
