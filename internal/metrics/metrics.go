// Package metrics exposes ingestion counters on the Prometheus registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_fetched_total",
		Help: "Raw event records fetched from the source platform.",
	}, []string{"repo"})

	EventsInserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_inserted_total",
		Help: "Events newly inserted into the store.",
	}, []string{"repo"})

	EventsDuplicate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_duplicate_total",
		Help: "Fetched events already present in the store.",
	}, []string{"repo"})

	EventsSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "events_skipped_total",
		Help: "Fetched events skipped as malformed or outside the ingest window.",
	}, []string{"repo"})

	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fetch_failures_total",
		Help: "Failed event fetches per repository.",
	}, []string{"repo"})
)
