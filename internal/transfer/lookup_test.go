package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Elver581/traspasos/internal/model"
)

// fakeSearcher returns canned results, optionally blocking until released so
// tests can interleave requests.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]model.ProductStockEntry
	err     error
	block   chan struct{}
	queries []string
}

func (f *fakeSearcher) SearchProducts(_ context.Context, _ int64, query string, _, _ int) ([]model.ProductStockEntry, error) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	block := f.block
	f.mu.Unlock()

	if block != nil {
		<-block
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func testSearcher() *fakeSearcher {
	return &fakeSearcher{results: map[string][]model.ProductStockEntry{
		"cab": {
			{ProductID: 10, Name: "Cable", Stock: 5},
		},
		"ada": {
			{ProductID: 11, Name: "Adapter", Stock: 2},
			{ProductID: 12, Name: "", Stock: 7}, // unnamed rows are dropped
		},
	}}
}

func TestLookupSearch(t *testing.T) {
	l := NewLookup(testSearcher())

	options := l.Search(context.Background(), 1, "cab")
	if len(options) != 1 {
		t.Fatalf("expected 1 option, got %d", len(options))
	}
	if options[0].Value != 10 || options[0].Label != "Cable" || options[0].Stock != 5 {
		t.Errorf("unexpected option: %+v", options[0])
	}
}

func TestLookupFiltersUnnamedResults(t *testing.T) {
	l := NewLookup(testSearcher())

	options := l.Search(context.Background(), 1, "ada")
	if len(options) != 1 {
		t.Fatalf("expected 1 option after filtering, got %d", len(options))
	}
	if options[0].Label != "Adapter" {
		t.Errorf("unexpected label %q", options[0].Label)
	}
}

func TestLookupDisabledWithoutBranch(t *testing.T) {
	searcher := testSearcher()
	l := NewLookup(searcher)

	l.Search(context.Background(), 1, "cab")
	options := l.Search(context.Background(), 0, "cab")
	if len(options) != 0 {
		t.Errorf("no-branch search should clear options, got %v", options)
	}
	if len(searcher.queries) != 1 {
		t.Errorf("no-branch search should not issue a request, got %d requests", len(searcher.queries))
	}
}

func TestLookupErrorClearsOptions(t *testing.T) {
	searcher := testSearcher()
	l := NewLookup(searcher)

	l.Search(context.Background(), 1, "cab")

	searcher.mu.Lock()
	searcher.err = errors.New("timeout")
	searcher.mu.Unlock()

	options := l.Search(context.Background(), 1, "cab")
	if len(options) != 0 {
		t.Errorf("failed search should yield empty options, got %v", options)
	}
}

func TestLookupStaleResponseDiscarded(t *testing.T) {
	searcher := testSearcher()
	searcher.block = make(chan struct{})
	l := NewLookup(searcher)

	// First request blocks inside the searcher.
	firstDone := make(chan []Option)
	go func() {
		firstDone <- l.Search(context.Background(), 1, "cab")
	}()

	// Wait for the first request to be in flight.
	for {
		searcher.mu.Lock()
		inflight := len(searcher.queries) == 1
		searcher.mu.Unlock()
		if inflight {
			break
		}
		time.Sleep(time.Millisecond)
	}

	// Second request supersedes it; unblock both.
	searcher.mu.Lock()
	release := searcher.block
	searcher.block = nil
	searcher.mu.Unlock()
	second := l.Search(context.Background(), 1, "ada")
	close(release)

	first := <-firstDone

	if len(second) != 1 || second[0].Label != "Adapter" {
		t.Fatalf("second search returned %v", second)
	}
	// The stale response must not have overwritten the newer options.
	options := l.Options()
	if len(options) != 1 || options[0].Label != "Adapter" {
		t.Errorf("options overwritten by stale response: %v", options)
	}
	// The superseded call reports the current options, not its own result.
	if len(first) != 1 || first[0].Label != "Adapter" {
		t.Errorf("stale search returned its own result: %v", first)
	}
}

func TestDebouncedLookupCollapsesBursts(t *testing.T) {
	searcher := testSearcher()
	l := NewLookup(searcher)
	d := NewDebouncedLookup(l, 20*time.Millisecond)

	var mu sync.Mutex
	var applied [][]Option
	apply := func(opts []Option) {
		mu.Lock()
		applied = append(applied, opts)
		mu.Unlock()
	}

	d.Search(context.Background(), 1, "c", apply)
	d.Search(context.Background(), 1, "ca", apply)
	d.Search(context.Background(), 1, "cab", apply)

	time.Sleep(100 * time.Millisecond)

	searcher.mu.Lock()
	queries := append([]string(nil), searcher.queries...)
	searcher.mu.Unlock()

	if len(queries) != 1 || queries[0] != "cab" {
		t.Errorf("expected single request for final query, got %v", queries)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(applied) != 1 {
		t.Fatalf("expected apply once, got %d", len(applied))
	}
	if len(applied[0]) != 1 || applied[0][0].Label != "Cable" {
		t.Errorf("unexpected applied options: %v", applied[0])
	}
}

func TestDebouncedLookupCancel(t *testing.T) {
	searcher := testSearcher()
	l := NewLookup(searcher)
	d := NewDebouncedLookup(l, 20*time.Millisecond)

	d.Search(context.Background(), 1, "cab", func([]Option) {})
	d.Cancel()

	time.Sleep(60 * time.Millisecond)

	searcher.mu.Lock()
	defer searcher.mu.Unlock()
	if len(searcher.queries) != 0 {
		t.Errorf("cancelled search still issued a request: %v", searcher.queries)
	}
}
