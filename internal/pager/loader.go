// Package pager loads one page at a time and discards responses that were
// superseded by a newer navigation.
package pager

import (
	"context"
	"sync"
	"time"

	"github.com/rshade/pagesel/internal/artic"
	"github.com/rshade/pagesel/internal/logging"
)

// Fetcher fetches a single page.
type Fetcher interface {
	FetchPage(ctx context.Context, page int) (*artic.PageResult, error)
}

// Request is one page fetch issued by Loader.Begin.
type Request struct {
	Generation uint64
	Page       int

	ctx     context.Context
	fetcher Fetcher
}

// Result is the outcome of Request.Run.
type Result struct {
	Generation uint64
	Page       int
	Data       *artic.PageResult
	Err        error
	Duration   time.Duration
}

// Run performs the fetch. It blocks and is safe to call from any goroutine.
func (r Request) Run() Result {
	start := time.Now()
	data, err := r.fetcher.FetchPage(r.ctx, r.Page)
	return Result{
		Generation: r.Generation,
		Page:       r.Page,
		Data:       data,
		Err:        err,
		Duration:   time.Since(start),
	}
}

// Loader tracks the latest page request. Only the current page is retained.
type Loader struct {
	fetcher Fetcher

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	loading    bool
	current    *artic.PageResult
}

// NewLoader creates a Loader backed by fetcher.
func NewLoader(fetcher Fetcher) *Loader {
	return &Loader{fetcher: fetcher}
}

// Begin starts a new generation for page. The previous request, if still in
// flight, is cancelled and its result will be rejected by Accept. The current
// page is dropped so stale records are never shown while loading.
func (l *Loader) Begin(ctx context.Context, page int) Request {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}

	l.generation++
	reqCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.loading = true
	l.current = nil

	log := logging.ComponentLogger(logging.FromContext(ctx), "pager")
	log.Debug().
		Ctx(ctx).
		Str("operation", "begin").
		Int("page", page).
		Uint64("generation", l.generation).
		Msg("page load started")

	return Request{
		Generation: l.generation,
		Page:       page,
		ctx:        reqCtx,
		fetcher:    l.fetcher,
	}
}

// Accept applies res if it belongs to the latest generation and reports
// whether it did. A successful result becomes the current page; a failed one
// leaves no current page.
func (l *Loader) Accept(res Result) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if res.Generation != l.generation {
		return false
	}

	l.loading = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if res.Err != nil {
		l.current = nil
		return true
	}
	l.current = res.Data
	return true
}

// Current returns the accepted page, or nil while loading or after an error.
func (l *Loader) Current() *artic.PageResult {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Loading reports whether the latest request has not been accepted yet.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Close cancels any request in flight.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.loading = false
}
