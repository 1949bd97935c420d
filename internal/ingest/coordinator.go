// Package ingest pulls events from the source platform into the store.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/agrachev/github-events-stats/internal/github"
	"github.com/agrachev/github-events-stats/internal/metrics"
	"github.com/agrachev/github-events-stats/internal/models"
)

// EventFetcher is the source-client side of the coordinator.
type EventFetcher interface {
	FetchEvents(ctx context.Context, repo string) (*github.EventIter, error)
}

// EventWriter is the store side of the coordinator.
type EventWriter interface {
	UpsertEvent(ctx context.Context, ev models.Event) (bool, error)
}

// Coordinator ingests events for the configured repositories. One repository
// failing its fetch never blocks the others; store errors abort the run.
type Coordinator struct {
	client EventFetcher
	store  EventWriter
	repos  []string
	window time.Duration
	log    *slog.Logger

	// now is swapped in tests to pin the window cutoff.
	now func() time.Time
}

func NewCoordinator(client EventFetcher, store EventWriter, repos []string, window time.Duration, log *slog.Logger) *Coordinator {
	return &Coordinator{
		client: client,
		store:  store,
		repos:  repos,
		window: window,
		log:    log,
		now:    time.Now,
	}
}

// Run fetches and upserts events for every configured repository and reports
// per-repository counts. Malformed records and events older than the window
// are skipped and counted; duplicates are benign. Source failures are isolated
// per repository; a store failure aborts the run and is returned as an error
// so the API layer fails the whole request.
func (c *Coordinator) Run(ctx context.Context) (models.UpdateSummary, error) {
	summary := models.UpdateSummary{RunID: uuid.New().String()}

	var cutoff time.Time
	if c.window > 0 {
		cutoff = c.now().Add(-c.window)
	}

	for _, repo := range c.repos {
		upd, err := c.ingestRepo(ctx, repo, cutoff)
		if err != nil {
			c.log.Error("ingestion aborted",
				"run_id", summary.RunID, "repo", repo, "error", err)
			return summary, fmt.Errorf("event store: %w", err)
		}
		if upd.Failed() {
			metrics.FetchFailures.WithLabelValues(repo).Inc()
			c.log.Error("ingestion failed",
				"run_id", summary.RunID, "repo", repo, "error", upd.Error)
		} else {
			c.log.Info("ingestion finished",
				"run_id", summary.RunID, "repo", repo,
				"fetched", upd.Fetched, "inserted", upd.Inserted,
				"duplicates", upd.Duplicates, "skipped", upd.Skipped)
		}
		summary.Repositories = append(summary.Repositories, upd)
	}
	return summary, nil
}

// ingestRepo ingests one repository. Source failures come back inside the
// RepoUpdate; the error return is reserved for store failures.
func (c *Coordinator) ingestRepo(ctx context.Context, repo string, cutoff time.Time) (models.RepoUpdate, error) {
	upd := models.RepoUpdate{Repo: repo}

	iter, err := c.client.FetchEvents(ctx, repo)
	if err != nil {
		upd.Error = err.Error()
		return upd, nil
	}
	defer iter.Close()

	for iter.Next() {
		upd.Fetched++

		ev, err := iter.Event().Event(repo)
		if err != nil {
			upd.Skipped++
			continue
		}
		if !cutoff.IsZero() && ev.OccurredAt.Before(cutoff) {
			upd.Skipped++
			continue
		}

		inserted, err := c.store.UpsertEvent(ctx, ev)
		if err != nil {
			return upd, err
		}
		if inserted {
			upd.Inserted++
		} else {
			upd.Duplicates++
		}
	}
	if err := iter.Err(); err != nil {
		upd.Error = err.Error()
		return upd, nil
	}

	metrics.EventsFetched.WithLabelValues(repo).Add(float64(upd.Fetched))
	metrics.EventsInserted.WithLabelValues(repo).Add(float64(upd.Inserted))
	metrics.EventsDuplicate.WithLabelValues(repo).Add(float64(upd.Duplicates))
	metrics.EventsSkipped.WithLabelValues(repo).Add(float64(upd.Skipped))
	return upd, nil
}
