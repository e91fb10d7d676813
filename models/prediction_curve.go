package models

import "sort"

// PredictionCurve maps HHMM keys to predicted occupancy for one day.
type PredictionCurve map[string]int

// Keys returns the curve's keys in time order.
func (c PredictionCurve) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
