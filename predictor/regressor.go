// Package predictor forecasts occupancy with a weighted k-nearest-neighbor
// regression over past observations of the same weekday.
package predictor

import (
	"errors"
	"fmt"
	"math"

	"occupancy-forecaster/models"
)

var (
	ErrInvalidK         = errors.New("k must be at least 1")
	ErrNoObservations   = errors.New("no observations to predict from")
	ErrInvalidFrequency = errors.New("frequency must be positive")
)

const (
	MIN_OCCUPANCY = 0
	MAX_OCCUPANCY = 100

	// latest time of day a curve runs to when closing falls after midnight
	END_OF_DAY = models.HHMM(2359)

	// absorbs float error before truncation so 43.999999 reads as 44
	truncationEpsilon = 1e-9
)

// Regressor predicts occupancy from the k heaviest observations.
type Regressor struct {
	k int
}

func NewRegressor(k int) (*Regressor, error) {
	if k < 1 {
		return nil, ErrInvalidK
	}
	return &Regressor{k: k}, nil
}

// Weight scores an observation against a target time. Recency and proximity
// add up; neither can zero out the other.
func Weight(obs models.Observation, target models.HHMM) float64 {
	return 1/float64(obs.WeeksAway+1) + 1/float64(obs.Time.Distance(target)+1)
}

// PredictOne returns the weighted average occupancy of the k heaviest
// observations, truncated and clamped to [0,100].
func (r *Regressor) PredictOne(series models.ObservationSeries, target models.HHMM) (int, error) {
	if len(series) == 0 {
		return 0, ErrNoObservations
	}

	best := newTopK(r.k)
	for i, obs := range series {
		best.offer(neighbor{
			occupancy: float64(obs.Occupancy),
			weight:    Weight(obs, target),
			seq:       i,
		})
	}

	var total float64
	for _, n := range best.neighbors() {
		total += n.weight
	}
	var estimate float64
	for _, n := range best.neighbors() {
		estimate += n.weight / total * n.occupancy
	}
	return clamp(int(math.Floor(estimate + truncationEpsilon))), nil
}

// PredictRange predicts every frequency minutes from opening to closing
// inclusive. Steps are taken on the HHMM integer, and steps landing on a
// minute of 60 or more are skipped.
func (r *Regressor) PredictRange(series models.ObservationSeries, opening, closing models.HHMM, frequency int) (models.PredictionCurve, error) {
	if frequency <= 0 {
		return nil, ErrInvalidFrequency
	}
	if len(series) == 0 {
		return nil, ErrNoObservations
	}
	if closing < opening {
		closing = END_OF_DAY
	}

	curve := models.PredictionCurve{}
	for t := opening; t <= closing; t = t.Add(frequency) {
		if !t.Valid() {
			continue
		}
		occupancy, err := r.PredictOne(series, t)
		if err != nil {
			return nil, fmt.Errorf("failed to predict %s: %w", t, err)
		}
		curve[t.String()] = occupancy
	}
	return curve, nil
}

func clamp(v int) int {
	if v < MIN_OCCUPANCY {
		return MIN_OCCUPANCY
	}
	if v > MAX_OCCUPANCY {
		return MAX_OCCUPANCY
	}
	return v
}
