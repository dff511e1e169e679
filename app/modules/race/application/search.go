package raceservice

import (
	"context"
	"sync"
	"time"

	racedomain "github.com/Black-And-White-Club/race-tally/app/modules/race/domain"
)

// DefaultSearchDebounce is the quiet period before a roster query runs.
const DefaultSearchDebounce = 400 * time.Millisecond

// DriverSearcher runs a roster query.
type DriverSearcher interface {
	SearchDrivers(ctx context.Context, query string) ([]racedomain.Driver, error)
}

// SearchResult is delivered for the latest query only.
type SearchResult struct {
	Query      string
	Generation uint64
	Drivers    []racedomain.Driver
	Err        error
}

// Searcher debounces roster queries. Each call to Search supersedes the
// previous one; a superseded query never delivers a result.
type Searcher struct {
	search   DriverSearcher
	debounce time.Duration
	results  chan SearchResult

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// NewSearcher creates a Searcher. A non-positive debounce uses DefaultSearchDebounce.
func NewSearcher(search DriverSearcher, debounce time.Duration) *Searcher {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	return &Searcher{
		search:   search,
		debounce: debounce,
		results:  make(chan SearchResult, 1),
	}
}

// Results holds at most the newest undelivered result.
func (s *Searcher) Results() <-chan SearchResult {
	return s.results
}

// Search cancels any in-flight query and schedules a new one.
func (s *Searcher) Search(ctx context.Context, query string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return s.generation
	}

	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	go s.runQuery(ctx, gen, query)
	return gen
}

func (s *Searcher) runQuery(ctx context.Context, gen uint64, query string) {
	timer := time.NewTimer(s.debounce)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return
	case <-timer.C:
	}

	drivers, err := s.search.SearchDrivers(ctx, query)
	if ctx.Err() != nil {
		return
	}
	s.deliver(SearchResult{Query: query, Generation: gen, Drivers: drivers, Err: err})
}

func (s *Searcher) deliver(r SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || r.Generation != s.generation {
		return
	}
	select {
	case <-s.results:
	default:
	}
	select {
	case s.results <- r:
	default:
	}
}

// Close cancels the in-flight query and closes Results.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	close(s.results)
}
