package stats

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrachev/github-events-stats/internal/models"
)

// fakeSource serves canned events keyed by type, pre-sorted the way the store
// contract requires.
type fakeSource struct {
	repo   string
	events map[string][]models.Event
}

func (f *fakeSource) ListTypes(_ context.Context, repo string) ([]string, error) {
	if repo != f.repo {
		return nil, nil
	}
	types := make([]string, 0, len(f.events))
	for t := range f.events {
		types = append(types, t)
	}
	return types, nil
}

func (f *fakeSource) ListByRepoAndType(_ context.Context, repo, typ string) ([]models.Event, error) {
	if repo != f.repo {
		return nil, nil
	}
	return f.events[typ], nil
}

func eventsAt(typ string, offsets ...int) []models.Event {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	out := make([]models.Event, len(offsets))
	for i, off := range offsets {
		out[i] = models.Event{
			EventID:    fmt.Sprintf("%s-%d", typ, i),
			Repo:       "golang/go",
			Type:       typ,
			OccurredAt: base.Add(time.Duration(off) * time.Second),
		}
	}
	return out
}

func TestRepoStatistics(t *testing.T) {
	tests := []struct {
		name   string
		events map[string][]models.Event
		want   map[string]float64
	}{
		{
			name:   "mean of consecutive deltas",
			events: map[string][]models.Event{"PushEvent": eventsAt("PushEvent", 0, 10, 30)},
			want:   map[string]float64{"PushEvent": 15.0},
		},
		{
			name:   "single event type is omitted",
			events: map[string][]models.Event{"ForkEvent": eventsAt("ForkEvent", 0)},
			want:   map[string]float64{},
		},
		{
			name:   "no events yields empty mapping",
			events: map[string][]models.Event{},
			want:   map[string]float64{},
		},
		{
			name: "types are independent",
			events: map[string][]models.Event{
				"PushEvent":   eventsAt("PushEvent", 0, 60),
				"IssuesEvent": eventsAt("IssuesEvent", 0, 30, 90, 120),
				"WatchEvent":  eventsAt("WatchEvent", 42),
			},
			want: map[string]float64{"PushEvent": 60.0, "IssuesEvent": 40.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(&fakeSource{repo: "golang/go", events: tt.events})

			got, err := engine.RepoStatistics(context.Background(), "golang/go")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoStatistics_SubSecondPrecisionPreserved(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []models.Event{
		{EventID: "a", Repo: "golang/go", Type: "PushEvent", OccurredAt: base},
		{EventID: "b", Repo: "golang/go", Type: "PushEvent", OccurredAt: base.Add(1500 * time.Millisecond)},
	}
	engine := NewEngine(&fakeSource{repo: "golang/go", events: map[string][]models.Event{"PushEvent": events}})

	got, err := engine.RepoStatistics(context.Background(), "golang/go")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, got["PushEvent"], 1e-9)
}
