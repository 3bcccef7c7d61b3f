package scenarios

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a live search runs.
const DefaultDebounce = 300 * time.Millisecond

// SearchResult is delivered for the latest input only.
type SearchResult struct {
	Term      string
	Scenarios []Scenario
	Err       error
}

// LiveSearch debounces free-text input. A newer input cancels the pending or
// in-flight search, so only results for the latest term are delivered.
type LiveSearch struct {
	svc      *Service
	debounce time.Duration

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
	out    chan SearchResult
}

// NewLiveSearch creates a debounced search over svc. A non-positive debounce
// uses DefaultDebounce.
func (s *Service) NewLiveSearch(debounce time.Duration) *LiveSearch {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &LiveSearch{
		svc:      s,
		debounce: debounce,
		out:      make(chan SearchResult, 1),
	}
}

// Results delivers search results. The channel is closed by Close.
func (l *LiveSearch) Results() <-chan SearchResult {
	return l.out
}

// Input records a new search term and restarts the quiet period.
func (l *LiveSearch) Input(term string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.stopLocked()

	l.gen++
	gen := l.gen
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.wg.Add(1)
	l.timer = time.AfterFunc(l.debounce, func() {
		defer l.wg.Done()
		l.run(ctx, gen, term)
	})
}

// Close cancels pending work, waits for it and closes Results.
func (l *LiveSearch) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.stopLocked()
	l.mu.Unlock()

	l.wg.Wait()
	close(l.out)
}

func (l *LiveSearch) stopLocked() {
	if l.timer != nil && l.timer.Stop() {
		l.wg.Done()
	}
	l.timer = nil
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *LiveSearch) run(ctx context.Context, gen uint64, term string) {
	items, err := l.svc.Search(ctx, term)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || gen != l.gen || ctx.Err() != nil {
		return
	}
	res := SearchResult{Term: term, Scenarios: items, Err: err}
	select {
	case l.out <- res:
	default:
		select {
		case <-l.out:
		default:
		}
		l.out <- res
	}
}
