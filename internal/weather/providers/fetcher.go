package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/radar-vs-measurement/internal/metrics"
	"github.com/i474232898/radar-vs-measurement/internal/weather"
)

// maxBodyBytes bounds the size of a single upstream response.
const maxBodyBytes = 32 << 20

// Request describes one upstream GET request.
type Request struct {
	Name    string // used in logs, metrics and errors
	BaseURL string
	Query   url.Values
}

func (r Request) url() (string, error) {
	u, err := url.Parse(r.BaseURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	for k, vs := range r.Query {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Fetcher issues batches of requests concurrently and returns their JSON
// bodies. A batch either fully succeeds or fails.
type Fetcher struct {
	client  *http.Client
	metrics *metrics.Metrics

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

// NewFetcher creates a Fetcher. m may be nil.
func NewFetcher(client *http.Client, m *metrics.Metrics) *Fetcher {
	return &Fetcher{
		client:   client,
		metrics:  m,
		breakers: make(map[string]*gobreaker.CircuitBreaker),
	}
}

// FetchAll issues all requests concurrently and waits for every one of them.
// The i-th body belongs to the i-th request. The first failure is returned as
// a *weather.FetchError and cancels the requests still in flight.
func (f *Fetcher) FetchAll(ctx context.Context, reqs []Request) ([]json.RawMessage, error) {
	bodies := make([]json.RawMessage, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	for i, r := range reqs {
		g.Go(func() error {
			start := time.Now()
			body, err := f.fetch(gctx, r)
			f.metrics.ObserveFetch(r.Name, time.Since(start), err)
			if err != nil {
				return &weather.FetchError{Index: i, Name: r.Name, Err: err}
			}
			bodies[i] = body
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return bodies, nil
}

func (f *Fetcher) fetch(ctx context.Context, r Request) (json.RawMessage, error) {
	u, err := r.url()
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, stripURL(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := doRequest(ctx, f.client, f.breaker(r.Name), req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if !json.Valid(body) {
		return nil, errInvalidJSON
	}
	return json.RawMessage(body), nil
}

func (f *Fetcher) breaker(name string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	cb, ok := f.breakers[name]
	if !ok {
		cb = newCircuitBreaker(name)
		f.breakers[name] = cb
	}
	return cb
}
