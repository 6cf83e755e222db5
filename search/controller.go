// Package search drives catalogue search as an explicit state machine:
// answer from the cached snapshot when there is one, fall back to the
// network when there is not, and publish every transition to subscribers.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/debounce"
	"github.com/letmevibethatforyou/unicatalog/searchcache"
)

// DefaultFetchTimeout bounds a single catalogue fetch.
const DefaultFetchTimeout = 15 * time.Second

type config struct {
	messages     Messages
	logger       *slog.Logger
	fetchTimeout time.Duration
	quiet        time.Duration
}

// Option configures a Controller or Session.
type Option func(*config)

// WithMessages sets the localized error messages.
func WithMessages(m Messages) Option {
	return func(cfg *config) {
		cfg.messages = m
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

// WithFetchTimeout bounds each catalogue fetch. Zero disables the bound.
func WithFetchTimeout(d time.Duration) Option {
	return func(cfg *config) {
		cfg.fetchTimeout = d
	}
}

// WithQuiet sets the debounce quiet period used by a Session.
func WithQuiet(d time.Duration) Option {
	return func(cfg *config) {
		cfg.quiet = d
	}
}

func newConfig(opts []Option) *config {
	cfg := &config{
		messages:     EnglishMessages,
		logger:       slog.Default(),
		fetchTimeout: DefaultFetchTimeout,
		quiet:        debounce.DefaultQuiet,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

type subscriber struct {
	id uint64
	fn func(State)
}

// Controller is the search state machine. It is driven by three events:
// TermChanged from the caller, and fetch success or failure from the
// catalogue. Events are handled one at a time.
//
// Every TermChanged gets a new request id; a fetch completion whose id is
// no longer the latest is dropped, so the last request always wins.
type Controller struct {
	catalog unicatalog.Catalog
	cache   *searchcache.Cache
	cfg     *config

	// events serializes event handling and subscriber notification.
	events sync.Mutex
	seq    uint64
	closed bool

	mu      sync.RWMutex
	state   State
	subs    []subscriber
	nextSub uint64

	ctx      context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
}

// NewController creates a controller in the Idle state. The cache is
// owned by the caller, who is responsible for clearing it at teardown.
func NewController(catalog unicatalog.Catalog, cache *searchcache.Cache, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		catalog: catalog,
		cache:   cache,
		cfg:     newConfig(opts),
		state:   idleState(),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Subscribe registers fn to receive every subsequent state. Callbacks run
// one at a time in transition order and must not call TermChanged or
// Close synchronously. The returned function unsubscribes.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	c.mu.Lock()
	c.nextSub++
	id := c.nextSub
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

// TermChanged handles a settled search term. Answers served from the
// snapshot are published before TermChanged returns; network answers are
// published later from the fetch goroutine.
func (c *Controller) TermChanged(term string) {
	c.events.Lock()
	defer c.events.Unlock()

	if c.closed {
		return
	}

	c.seq++
	id := c.seq

	if strings.TrimSpace(term) == "" {
		if snapshot, ok := c.cache.Get(); ok {
			c.transition(successState(term, snapshot))
			return
		}
		c.transition(loadingState(term))
		c.startFetch(id, term, true)
		return
	}

	if snapshot, ok := c.cache.Get(); ok {
		c.transition(successState(term, searchcache.FilterLocal(snapshot, term)))
		return
	}

	c.transition(loadingState(term))
	c.startFetch(id, term, false)
}

// Close stops the controller. Fetches still in flight are canceled and
// their completions ignored; Close waits for them to return.
func (c *Controller) Close() {
	c.events.Lock()
	if c.closed {
		c.events.Unlock()
		return
	}
	c.closed = true
	c.cancel()
	c.events.Unlock()

	c.inflight.Wait()
}

// Wait blocks until every fetch started so far has completed. It must not
// run concurrently with TermChanged.
func (c *Controller) Wait() {
	c.inflight.Wait()
}

func (c *Controller) startFetch(id uint64, term string, unfiltered bool) {
	fetchTerm := term
	if unfiltered {
		fetchTerm = ""
	}

	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		ctx := c.ctx
		if c.cfg.fetchTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.cfg.fetchTimeout)
			defer cancel()
		}

		results, err := c.catalog.FetchAll(ctx, fetchTerm)
		if err != nil {
			c.fetchFailed(id, term, err)
			return
		}
		c.fetchSucceeded(id, term, unfiltered, results)
	}()
}

func (c *Controller) fetchSucceeded(id uint64, term string, unfiltered bool, results []unicatalog.University) {
	c.events.Lock()
	defer c.events.Unlock()

	if c.closed {
		return
	}

	// A superseded unfiltered fetch is still the full catalogue, so it may
	// seed the snapshot even though its answer is no longer shown.
	if unfiltered {
		c.cache.Populate(results)
	}

	if id != c.seq {
		c.cfg.logger.DebugContext(c.ctx, "dropping stale catalogue response",
			"request", id,
			"latest", c.seq,
			"term", term,
		)
		return
	}

	c.transition(successState(term, results))
}

func (c *Controller) fetchFailed(id uint64, term string, err error) {
	c.events.Lock()
	defer c.events.Unlock()

	if c.closed {
		return
	}

	if id != c.seq {
		c.cfg.logger.DebugContext(c.ctx, "dropping stale catalogue failure",
			"request", id,
			"latest", c.seq,
			"error", err,
		)
		return
	}

	c.cfg.logger.WarnContext(c.ctx, "catalogue fetch failed",
		"term", term,
		"code", unicatalog.Code(err).String(),
		"error", err,
	)
	c.transition(errorState(term, c.cfg.messages.For(err), err))
}

// transition replaces the state and notifies subscribers. Callers hold
// c.events.
func (c *Controller) transition(s State) {
	c.mu.Lock()
	c.state = s
	subs := make([]subscriber, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, sub := range subs {
		sub.fn(s)
	}
}
