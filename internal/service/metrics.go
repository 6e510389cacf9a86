package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	turnsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kingdom_turns_total",
			Help: "Total number of processed turns by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	gameOversTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kingdom_game_overs_total",
			Help: "Total number of finished playthroughs by reason.",
		},
		[]string{"reason"},
	)

	selectionRetriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kingdom_event_selection_retries_total",
		Help: "Total number of event selection retries caused by events without options.",
	})

	invalidCatalogEntriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kingdom_invalid_catalog_entries_total",
		Help: "Total number of skipped catalog entries with invalid data.",
	})

	turnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kingdom_turn_duration_seconds",
			Help:    "Duration of turn processing in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"action"},
	)
)
