// Package metrics exposes Prometheus collectors for the tracking loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_cycles_total",
		Help: "Tracking cycles started.",
	})

	CycleFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occupancy_cycle_failures_total",
		Help: "Cycles that fell back to the error interval, by stage.",
	}, []string{"stage"})

	StoreWriteErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "occupancy_store_write_errors_total",
		Help: "Failed remote store writes, by document kind.",
	}, []string{"kind"})

	ForecastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_forecasts_total",
		Help: "Daily forecast curves written.",
	})

	WindowRebuildsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "occupancy_window_rebuilds_total",
		Help: "Historical window rebuilds.",
	})

	LatestOccupancy = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "occupancy_latest_percent",
		Help: "Most recently scraped occupancy.",
	})

	NextDelaySeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "occupancy_next_delay_seconds",
		Help: "Sleep chosen at the top of the latest cycle.",
	})
)
