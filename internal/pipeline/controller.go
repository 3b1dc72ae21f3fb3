// Package pipeline drives one browsing session: debounced search input,
// paginated fetches and the trending side effects of a successful search.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"movie-finder-service/internal/debounce"
	"movie-finder-service/internal/model"
	"movie-finder-service/internal/service"

	"github.com/rs/zerolog/log"
)

// Status is the fetch state of a session
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// User-visible error messages
const (
	MsgFetchFailed  = "Failed to fetch data"
	MsgNetworkError = "Error fetching movies. Please try again later."
)

// TrendingLimit is how many trending records a session loads
const TrendingLimit = 5

// MovieSource loads one page of movies
type MovieSource interface {
	Fetch(ctx context.Context, query string, page int) (*model.SearchResultPage, error)
}

// TrendingRecorder is the trending side of the pipeline
type TrendingRecorder interface {
	RecordAsync(term string, movie model.MovieSummary)
	TopTrending(ctx context.Context, limit int) []model.TrendingRecord
}

// Publisher receives state snapshots
type Publisher interface {
	Publish(topic string, data any)
}

// State is the snapshot of a session returned to clients
type State struct {
	Status     Status                 `json:"status"`
	Input      string                 `json:"input"`
	Query      string                 `json:"query"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
	Results    []model.MovieCard      `json:"results"`
	Trending   []model.TrendingRecord `json:"trending"`
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error"`
}

func (s State) clone() State {
	out := s
	out.Results = append([]model.MovieCard{}, s.Results...)
	out.Trending = append([]model.TrendingRecord{}, s.Trending...)
	return out
}

// Options configures a Controller
type Options struct {
	DebounceWindow time.Duration
	ImageBase      string
}

// Controller owns the state of one session. All mutations happen under mu;
// fetches run in their own goroutines and apply results under mu.
type Controller struct {
	id        string
	source    MovieSource
	trending  TrendingRecorder
	pub       Publisher
	imageBase string
	debouncer *debounce.Debouncer[string]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	state   State
	seq     uint64 // 最新一次请求的序号
	started bool
	closed  bool
}

// NewController creates an idle controller. pub may be nil.
func NewController(id string, source MovieSource, trending TrendingRecorder, pub Publisher, opts Options) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:        id,
		source:    source,
		trending:  trending,
		pub:       pub,
		imageBase: opts.ImageBase,
		ctx:       ctx,
		cancel:    cancel,
		state: State{
			Status:   StatusIdle,
			Page:     1,
			Results:  []model.MovieCard{},
			Trending: []model.TrendingRecord{},
		},
	}
	c.debouncer = debounce.New(opts.DebounceWindow, c.commit)
	return c
}

// ID returns the session id
func (c *Controller) ID() string {
	return c.id
}

// Start issues the initial discover fetch and the one-off trending load
func (c *Controller) Start() {
	c.mu.Lock()
	if c.started || c.closed {
		c.mu.Unlock()
		return
	}
	c.started = true
	c.fetchLocked()
	c.wg.Add(1)
	c.mu.Unlock()

	go c.loadTrending()
}

// SetInput records raw search text; the query commits after the debounce window
func (c *Controller) SetInput(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.state.Input = text
	c.publishLocked()
	c.mu.Unlock()

	c.debouncer.Push(text)
}

// commit applies a debounced query. The page goes back to 1 before the fetch.
func (c *Controller) commit(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || query == c.state.Query {
		return
	}
	log.Debug().Str("session", c.id).Str("query", query).Msg("Search query committed")

	c.state.Query = query
	c.state.Page = 1
	c.fetchLocked()
}

// NextPage moves forward unless the last known page is reached
func (c *Controller) NextPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state.Page >= c.state.TotalPages {
		return
	}
	c.state.Page++
	c.fetchLocked()
}

// PrevPage moves back unless already on page 1
func (c *Controller) PrevPage() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || c.state.Page <= 1 {
		return
	}
	c.state.Page--
	c.fetchLocked()
}

// fetchLocked enters Loading and issues a fetch for the current query and page.
// Caller holds mu.
func (c *Controller) fetchLocked() {
	c.seq++
	seq := c.seq
	query, page := c.state.Query, c.state.Page

	c.state.Status = StatusLoading
	c.state.Loading = true
	c.state.Error = ""
	c.publishLocked()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		result, err := c.source.Fetch(c.ctx, query, page)
		c.apply(seq, query, result, err)
	}()
}

func (c *Controller) apply(seq uint64, query string, result *model.SearchResultPage, err error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return
	}
	if seq != c.seq {
		log.Debug().Str("session", c.id).Str("query", query).Msg("Discarding stale response")
		c.mu.Unlock()
		return
	}

	c.state.Loading = false
	if err != nil {
		c.state.Status = StatusError
		if errors.Is(err, service.ErrFetchFailed) {
			c.state.Error = MsgFetchFailed
			c.state.Results = []model.MovieCard{}
		} else {
			// 网络错误保留上一次的结果
			c.state.Error = MsgNetworkError
		}
		log.Warn().Err(err).Str("session", c.id).Str("query", query).Msg("Movie fetch failed")
		c.publishLocked()
		c.mu.Unlock()
		return
	}

	c.state.Status = StatusSuccess
	c.state.Results = model.NewMovieCards(result.Results, c.imageBase)
	c.state.TotalPages = result.TotalPages
	c.publishLocked()
	c.mu.Unlock()

	if query != "" && len(result.Results) > 0 {
		c.trending.RecordAsync(query, result.Results[0])
	}
}

func (c *Controller) loadTrending() {
	defer c.wg.Done()

	records := c.trending.TopTrending(c.ctx, TrendingLimit)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state.Trending = records
	c.publishLocked()
}

func (c *Controller) publishLocked() {
	if c.pub != nil {
		c.pub.Publish(c.id, c.state.clone())
	}
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.clone()
}

// Wait blocks until in-flight fetches and the trending load returned
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Close stops the debouncer, cancels in-flight fetches and waits for them
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	c.debouncer.Stop()
	c.cancel()
	c.wg.Wait()
}
