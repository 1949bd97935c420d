// Package stats derives per-event-type timing statistics from stored events.
package stats

import (
	"context"

	"github.com/agrachev/github-events-stats/internal/models"
)

// EventSource is the read side of the event store the engine depends on.
// ListByRepoAndType must return events sorted ascending by occurred_at with
// ties broken by event id.
type EventSource interface {
	ListTypes(ctx context.Context, repo string) ([]string, error)
	ListByRepoAndType(ctx context.Context, repo, typ string) ([]models.Event, error)
}

// Engine computes mean inter-event intervals. It is a pure function of the
// current event set; nothing is cached or persisted.
type Engine struct {
	src EventSource
}

func NewEngine(src EventSource) *Engine {
	return &Engine{src: src}
}

// RepoStatistics returns, for every event type of repo with at least two
// stored events, the arithmetic mean of consecutive occurred_at deltas in
// seconds. Types below two events are omitted rather than reported as zero; a
// repository with no events yields an empty map.
func (e *Engine) RepoStatistics(ctx context.Context, repo string) (map[string]float64, error) {
	types, err := e.src.ListTypes(ctx, repo)
	if err != nil {
		return nil, err
	}

	result := make(map[string]float64, len(types))
	for _, typ := range types {
		events, err := e.src.ListByRepoAndType(ctx, repo, typ)
		if err != nil {
			return nil, err
		}
		if len(events) < 2 {
			continue
		}

		var sum float64
		for i := 1; i < len(events); i++ {
			sum += events[i].OccurredAt.Sub(events[i-1].OccurredAt).Seconds()
		}
		result[typ] = sum / float64(len(events)-1)
	}
	return result, nil
}
