package search

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/debounce"
	"github.com/letmevibethatforyou/unicatalog/searchcache"
	"golang.org/x/sync/singleflight"
)

// Session is one mounted search view: raw input goes through a debouncer
// into a controller backed by a snapshot cache. Close tears all three down.
type Session struct {
	catalog    unicatalog.Catalog
	cache      *searchcache.Cache
	controller *Controller
	debouncer  *debounce.Debouncer
	details    singleflight.Group
	closeOnce  sync.Once
}

// Mount wires a session and starts the initial unfiltered load, so the
// session begins in the Loading state (or Success, if cache is already
// populated).
func Mount(catalog unicatalog.Catalog, cache *searchcache.Cache, opts ...Option) *Session {
	controller := NewController(catalog, cache, opts...)
	s := &Session{
		catalog:    catalog,
		cache:      cache,
		controller: controller,
		debouncer:  debounce.New(controller.cfg.quiet, controller.TermChanged),
	}
	controller.TermChanged("")
	return s
}

// Submit feeds a raw keystroke-level term change through the debouncer.
func (s *Session) Submit(term string) {
	s.debouncer.Submit(term)
}

// Search handles term immediately, discarding any pending debounced term.
func (s *Session) Search(term string) {
	s.debouncer.Cancel()
	s.controller.TermChanged(term)
}

// State returns the current search state.
func (s *Session) State() State {
	return s.controller.State()
}

// Subscribe registers fn for state changes. See Controller.Subscribe.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.controller.Subscribe(fn)
}

// Controller exposes the underlying state machine.
func (s *Session) Controller() *Controller {
	return s.controller
}

// Detail loads one university and groups its benchmarks by method.
// Details are never cached. Concurrent loads of the same code share one
// fetch, which runs under the session's lifetime and fetch timeout rather
// than any single caller's ctx; ctx only bounds how long this caller waits.
func (s *Session) Detail(ctx context.Context, code string) (*DetailView, error) {
	ch := s.details.DoChan(code, func() (any, error) {
		fetchCtx := s.controller.ctx
		if timeout := s.controller.cfg.fetchTimeout; timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(fetchCtx, timeout)
			defer cancel()
		}
		return LoadDetail(fetchCtx, s.catalog, code)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*DetailView), nil
	case <-ctx.Done():
		return nil, errors.Mark(errors.Wrapf(ctx.Err(), "load university %q", code), unicatalog.ErrCanceled)
	}
}

// Close unmounts the session. The pending debounced term is dropped and
// the snapshot cleared on every path, so a later Mount on the same cache
// starts unpopulated. Close is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		defer s.cache.Clear()
		defer s.debouncer.Cancel()
		s.controller.Close()
	})
}
