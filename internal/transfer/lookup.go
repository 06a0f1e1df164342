package transfer

import (
	"context"
	"sync"
	"time"
)

// Option is a selectable product search result annotated with live stock.
type Option struct {
	Value int64  `json:"value"`
	Label string `json:"label"`
	Stock int    `json:"stock"`
}

// DefaultSearchLimit caps the number of options a single search returns.
const DefaultSearchLimit = 20

// Lookup performs cancellable product searches for a branch. Every issued
// request is tagged with a monotonically increasing sequence number and only
// the response to the most recently issued request may update the option
// list; stale responses are discarded. This holds under callback, goroutine,
// or plain sequential use.
type Lookup struct {
	searcher Searcher

	mu       sync.Mutex
	seq      uint64
	inflight int
	options  []Option
}

// NewLookup creates a lookup backed by the given searcher.
func NewLookup(searcher Searcher) *Lookup {
	return &Lookup{searcher: searcher}
}

// Search issues a query for the branch and returns the current option list
// after the response is handled. With no branch selected the lookup is
// disabled: the list is cleared and no request is issued. Search failures
// degrade to an empty list — search is advisory, not transactional — so no
// error is returned.
func (l *Lookup) Search(ctx context.Context, branchID int64, query string) []Option {
	l.mu.Lock()
	if branchID == 0 {
		l.options = nil
		opts := l.options
		l.mu.Unlock()
		return opts
	}
	l.seq++
	seq := l.seq
	l.inflight++
	l.mu.Unlock()

	entries, err := l.searcher.SearchProducts(ctx, branchID, query, DefaultSearchLimit, 0)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.inflight--

	// A newer request was issued while this one was in flight: discard.
	if seq != l.seq {
		return l.options
	}

	if err != nil {
		l.options = []Option{}
		return l.options
	}

	options := make([]Option, 0, len(entries))
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		options = append(options, Option{Value: e.ProductID, Label: e.Name, Stock: e.Stock})
	}
	l.options = options
	return l.options
}

// Options returns the most recently applied option list.
func (l *Lookup) Options() []Option {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.options
}

// Loading reports whether a search request is outstanding.
func (l *Lookup) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.inflight > 0
}

// DebouncedLookup wraps a Lookup so that bursts of keystrokes collapse into a
// single request once input has been quiet for the configured delay.
type DebouncedLookup struct {
	lookup *Lookup
	delay  time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncedLookup creates a debounced wrapper around lookup.
func NewDebouncedLookup(lookup *Lookup, delay time.Duration) *DebouncedLookup {
	return &DebouncedLookup{lookup: lookup, delay: delay}
}

// Search schedules a query, superseding any previously scheduled one. When
// the delay elapses the underlying lookup runs and apply is called with the
// resulting option list (which may belong to an even newer query if one was
// issued directly on the lookup in the meantime).
func (d *DebouncedLookup) Search(ctx context.Context, branchID int64, query string, apply func([]Option)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		apply(d.lookup.Search(ctx, branchID, query))
	})
}

// Cancel drops any scheduled search.
func (d *DebouncedLookup) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
