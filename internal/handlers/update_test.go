package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrachev/github-events-stats/internal/config"
	"github.com/agrachev/github-events-stats/internal/github"
	"github.com/agrachev/github-events-stats/internal/ingest"
	"github.com/agrachev/github-events-stats/internal/models"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type okStore struct{ inserted int }

func (s *okStore) UpsertEvent(context.Context, models.Event) (bool, error) {
	s.inserted++
	return true, nil
}

type deadStore struct{}

func (deadStore) UpsertEvent(context.Context, models.Event) (bool, error) {
	return false, errors.New("connection refused")
}

func updateRouter(pinger Pinger, store ingest.EventWriter, baseURL string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	client := github.NewClient(config.GitHub{BaseURL: baseURL, Timeout: 2 * time.Second, Retries: 1})
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := ingest.NewCoordinator(client, store, []string{"owner/repo"}, 0, log)

	r := gin.New()
	RegisterUpdateRoutes(r, pinger, coord)
	return r
}

func eventsPage() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"1","type":"PushEvent","created_at":"2024-03-01T12:00:00Z"}]`))
	}))
}

func getUpdate(r *gin.Engine) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/update", nil))
	return w
}

func TestUpdate_ReturnsSummary(t *testing.T) {
	srv := eventsPage()
	defer srv.Close()

	store := &okStore{}
	pinger := pingerFunc(func(context.Context) error { return nil })

	w := getUpdate(updateRouter(pinger, store, srv.URL))
	require.Equal(t, http.StatusOK, w.Code)

	var summary models.UpdateSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.Repositories, 1)
	assert.Equal(t, 1, summary.Repositories[0].Inserted)
	assert.Equal(t, 1, store.inserted)
}

func TestUpdate_StoreDownBeforeRun(t *testing.T) {
	srv := eventsPage()
	defer srv.Close()

	pinger := pingerFunc(func(context.Context) error { return errors.New("dial error") })

	w := getUpdate(updateRouter(pinger, &okStore{}, srv.URL))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestUpdate_StoreFailureMidRunReturns503(t *testing.T) {
	srv := eventsPage()
	defer srv.Close()

	// Ping succeeds, then the store dies during the run.
	pinger := pingerFunc(func(context.Context) error { return nil })

	w := getUpdate(updateRouter(pinger, deadStore{}, srv.URL))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "event store unavailable", body["error"])
}
