package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/agrachev/github-events-stats/internal/config"
	"github.com/agrachev/github-events-stats/internal/models"
)

// Client fetches public activity events from the GitHub events API.
type Client struct {
	baseURL string
	retries int
	http    *http.Client
}

// NewClient builds a client from the github section of the configuration.
func NewClient(cfg config.GitHub) *Client {
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: 5 * time.Second, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	retries := cfg.Retries
	if retries < 1 {
		retries = 1
	}
	return &Client{
		baseURL: cfg.BaseURL,
		retries: retries,
		http:    &http.Client{Timeout: cfg.Timeout, Transport: tr},
	}
}

// FetchEvents requests the recent events page for repo ("owner/name") and
// returns a consume-once iterator over the raw records. The platform serves a
// single bounded page; no pagination is attempted. Failures to reach the API
// or non-2xx responses wrap ErrSourceUnavailable.
func (c *Client) FetchEvents(ctx context.Context, repo string) (*EventIter, error) {
	owner, name, err := config.SplitRepo(repo)
	if err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/repos/%s/%s/events", c.baseURL, owner, name)

	var resp *http.Response
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(500 * time.Millisecond):
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, ctx.Err())
			}
		}
		req, rerr := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if rerr != nil {
			return nil, rerr
		}
		req.Header.Set("Accept", "application/vnd.github+json")

		resp, err = c.http.Do(req)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, repo, err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s: status %d: %s", ErrSourceUnavailable, repo, resp.StatusCode, body)
	}

	return newEventIter(repo, resp.Body), nil
}

// EventIter streams the raw records of one fetched page. It is finite and
// non-restartable; callers consume it once and then check Err.
type EventIter struct {
	repo    string
	body    io.ReadCloser
	dec     *json.Decoder
	cur     RawEvent
	err     error
	started bool
	done    bool
}

func newEventIter(repo string, body io.ReadCloser) *EventIter {
	return &EventIter{repo: repo, body: body, dec: json.NewDecoder(body)}
}

// Next advances to the next record. It returns false at the end of the page
// or on a decode error; Err distinguishes the two.
func (it *EventIter) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		tok, err := it.dec.Token()
		if err != nil {
			it.err = fmt.Errorf("%w: %s: decode: %v", ErrSourceUnavailable, it.repo, err)
			it.Close()
			return false
		}
		if tok != json.Delim('[') {
			it.err = fmt.Errorf("%w: %s: response is not a JSON array", ErrSourceUnavailable, it.repo)
			it.Close()
			return false
		}
	}
	if !it.dec.More() {
		it.Close()
		return false
	}
	var raw RawEvent
	if err := it.dec.Decode(&raw); err != nil {
		it.err = fmt.Errorf("%w: %s: decode: %v", ErrSourceUnavailable, it.repo, err)
		it.Close()
		return false
	}
	it.cur = raw
	return true
}

// Event returns the record decoded by the last successful Next.
func (it *EventIter) Event() RawEvent { return it.cur }

// Err returns the first error hit while streaming, nil on clean exhaustion.
func (it *EventIter) Err() error { return it.err }

// Close releases the underlying response body. Exhausting the iterator closes
// it implicitly; callers abandoning it mid-stream must call Close themselves.
// Safe to call more than once.
func (it *EventIter) Close() {
	if !it.done {
		it.done = true
		it.body.Close()
	}
}

// RawEvent is one record as delivered by the platform. Fields beyond the four
// the core interprets are kept opaquely in Payload.
type RawEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	CreatedAt string          `json:"created_at"`
	Payload   json.RawMessage `json:"payload"`
}

// Event validates the record and converts it for storage under repo. A record
// missing id, type or created_at yields a *MalformedRecordError.
func (r RawEvent) Event(repo string) (models.Event, error) {
	if r.ID == "" {
		return models.Event{}, &MalformedRecordError{Field: "id"}
	}
	if r.Type == "" {
		return models.Event{}, &MalformedRecordError{Field: "type"}
	}
	if r.CreatedAt == "" {
		return models.Event{}, &MalformedRecordError{Field: "created_at"}
	}
	ts, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return models.Event{}, &MalformedRecordError{Field: "created_at"}
	}
	return models.Event{
		EventID:    r.ID,
		Repo:       repo,
		Type:       r.Type,
		OccurredAt: ts.UTC(),
		Payload:    r.Payload,
	}, nil
}
