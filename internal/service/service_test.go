package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(vars map[string]any) (any, error)

type recordedCall struct {
	query string
	vars  map[string]any
}

// fakeQuerier answers named queries with scripted payloads. Payloads go
// through JSON so they decode into the client wire types like real responses.
type fakeQuerier struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	calls    []recordedCall
}

func newFakeQuerier() *fakeQuerier {
	return &fakeQuerier{handlers: make(map[string]handlerFunc)}
}

func (f *fakeQuerier) on(query string, h handlerFunc) *fakeQuerier {
	f.handlers[query] = h
	return f
}

func (f *fakeQuerier) Execute(_ context.Context, query string, vars map[string]any, result any) error {
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{query: query, vars: vars})
	h := f.handlers[query]
	f.mu.Unlock()

	if h == nil {
		return fmt.Errorf("unexpected query %s", query)
	}
	payload, err := h(vars)
	if err != nil {
		return err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, result)
}

func (f *fakeQuerier) callsTo(query string) []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedCall
	for _, c := range f.calls {
		if c.query == query {
			out = append(out, c)
		}
	}
	return out
}

func ts(minute int) time.Time {
	return time.Date(2024, 6, 1, 12, minute, 0, 0, time.UTC)
}

func TestNewAppliesDefaults(t *testing.T) {
	s := New(newFakeQuerier(), Options{})
	require.NotNil(t, s.Failures)
	require.NotNil(t, s.Artifacts)
	assert.Equal(t, DefaultConcurrency, s.Failures.concurrency)
	assert.Equal(t, DefaultConcurrency, s.Waterfall.concurrency)

	s = New(newFakeQuerier(), Options{Concurrency: 3})
	assert.Equal(t, 3, s.Failures.concurrency)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
