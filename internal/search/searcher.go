package search

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/vyrodovalexey/statportal/internal/observability"
	"github.com/vyrodovalexey/statportal/internal/upstream"
)

// DefaultDebounce is the quiet period before a query is sent.
const DefaultDebounce = 300 * time.Millisecond

// FetchFunc runs a query against the search endpoint.
type FetchFunc func(ctx context.Context, query string) ([]upstream.SearchResult, error)

// Searcher debounces queries and publishes only the answer to the latest
// one. A new Submit cancels the pending or in-flight request it supersedes.
type Searcher struct {
	fetch       FetchFunc
	debounce    time.Duration
	minLength   int
	previewSize int
	logger      observability.Logger

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu      sync.Mutex
	token   uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	results chan Result
	wg      sync.WaitGroup
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(s *Searcher) {
		if d >= 0 {
			s.debounce = d
		}
	}
}

// WithMinQueryLength sets the shortest query sent upstream.
func WithMinQueryLength(n int) Option {
	return func(s *Searcher) {
		if n > 0 {
			s.minLength = n
		}
	}
}

// WithPreviewSize sets the number of results kept in a published Result.
// Zero keeps them all.
func WithPreviewSize(n int) Option {
	return func(s *Searcher) {
		if n >= 0 {
			s.previewSize = n
		}
	}
}

// WithLogger sets the searcher logger.
func WithLogger(logger observability.Logger) Option {
	return func(s *Searcher) {
		s.logger = logger
	}
}

// NewSearcher creates a Searcher. Call Close to release it.
func NewSearcher(fetch FetchFunc, opts ...Option) *Searcher {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Searcher{
		fetch:       fetch,
		debounce:    DefaultDebounce,
		minLength:   DefaultMinQueryLength,
		previewSize: DefaultPreviewSize,
		logger:      observability.NopLogger(),
		baseCtx:     ctx,
		baseCancel:  cancel,
		results:     make(chan Result, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Results delivers published results. Only the most recent unread result is
// kept. The channel is closed by Close.
func (s *Searcher) Results() <-chan Result {
	return s.results
}

// Submit replaces the current query. Queries shorter than the minimum
// length publish an empty result at once without a request.
func (s *Searcher) Submit(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.token++
	token := s.token
	s.stopPendingLocked()

	if utf8.RuneCountInString(query) < s.minLength {
		s.publishLocked(Result{Query: query, Items: []Item{}, token: token})
		return
	}

	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	s.wg.Add(1)
	s.timer = time.AfterFunc(s.debounce, func() {
		defer s.wg.Done()
		s.run(ctx, token, query)
	})
}

func (s *Searcher) run(ctx context.Context, token uint64, query string) {
	hits, err := s.fetch(ctx, query)
	if ctx.Err() != nil {
		return
	}

	var res Result
	if err != nil {
		s.logger.Warn("search failed",
			observability.String("query", query),
			observability.Error(err))
		res = Result{Query: query, Items: []Item{}, Err: err}
	} else {
		res = Summarize(query, hits, s.previewSize, false)
	}
	res.token = token

	s.mu.Lock()
	defer s.mu.Unlock()
	s.publishLocked(res)
}

// publishLocked must be called with s.mu held.
func (s *Searcher) publishLocked(res Result) {
	if s.closed || res.token != s.token {
		return
	}
	select {
	case s.results <- res:
	default:
		select {
		case <-s.results:
		default:
		}
		s.results <- res
	}
}

// stopPendingLocked must be called with s.mu held.
func (s *Searcher) stopPendingLocked() {
	if s.timer != nil && s.timer.Stop() {
		s.wg.Done()
	}
	s.timer = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Close cancels outstanding work, waits for it and closes Results.
func (s *Searcher) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.stopPendingLocked()
	s.baseCancel()
	s.mu.Unlock()

	s.wg.Wait()
	close(s.results)
}
