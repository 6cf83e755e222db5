package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/recommend"
	"github.com/letmevibethatforyou/unicatalog/search"
	"github.com/letmevibethatforyou/unicatalog/searchcache"
	"golang.org/x/sync/errgroup"
)

// stateLine is the JSON form of a state printed by browse and search.
type stateLine struct {
	State   string                  `json:"state"`
	Term    string                  `json:"term"`
	Count   int                     `json:"count"`
	Results []unicatalog.University `json:"results,omitempty"`
	Message string                  `json:"message,omitempty"`
}

func newStateLine(s search.State) stateLine {
	return stateLine{
		State:   s.Kind.String(),
		Term:    s.Term,
		Count:   len(s.Results),
		Results: s.Results,
		Message: s.Message,
	}
}

func settled(s search.State) bool {
	return s.Kind == search.KindSuccess || s.Kind == search.KindError
}

// awaitSettled blocks until the session leaves Idle/Loading or ctx ends.
func awaitSettled(ctx context.Context, session *search.Session) (search.State, error) {
	ch := make(chan search.State, 1)
	unsubscribe := session.Subscribe(func(s search.State) {
		if !settled(s) {
			return
		}
		select {
		case ch <- s:
		default:
		}
	})
	defer unsubscribe()

	if s := session.State(); settled(s) {
		return s, nil
	}

	select {
	case s := <-ch:
		return s, nil
	case <-ctx.Done():
		return search.State{}, ctx.Err()
	}
}

// runSearch loads the snapshot and answers term from it.
func runSearch(ctx context.Context, catalog unicatalog.Catalog, term string, out io.Writer, opts ...search.Option) error {
	session := search.Mount(catalog, searchcache.New(), opts...)
	defer session.Close()

	loaded, err := awaitSettled(ctx, session)
	if err != nil {
		return err
	}
	if loaded.Kind == search.KindError {
		return writeJSON(out, newStateLine(loaded))
	}

	session.Search(term)
	return writeJSON(out, newStateLine(session.State()))
}

// runBrowse feeds every line of in through the session's debouncer and
// writes each state transition to out as one JSON line.
func runBrowse(ctx context.Context, catalog unicatalog.Catalog, in io.Reader, out io.Writer, quiet time.Duration, opts ...search.Option) error {
	lines := make(chan stateLine, 64)
	session := search.Mount(catalog, searchcache.New(), opts...)

	unsubscribe := session.Subscribe(func(s search.State) {
		lines <- newStateLine(s)
	})

	var g errgroup.Group
	g.Go(func() error {
		enc := json.NewEncoder(out)
		var err error
		for line := range lines {
			if err == nil {
				err = enc.Encode(line)
			}
		}
		return err
	})

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		session.Submit(scanner.Text())
	}
	scanErr := scanner.Err()

	// Let the last submitted term fire before tearing down.
	select {
	case <-time.After(2 * quiet):
	case <-ctx.Done():
	}
	if _, err := awaitSettled(ctx, session); err != nil && ctx.Err() == nil {
		scanErr = err
	}

	session.Close()
	unsubscribe()
	close(lines)

	if err := g.Wait(); err != nil {
		return err
	}
	return scanErr
}

// runShow loads one university and prints its benchmarks grouped by method.
func runShow(ctx context.Context, catalog unicatalog.Catalog, code string, out io.Writer) error {
	view, err := search.LoadDetail(ctx, catalog, code)
	if err != nil {
		return fmt.Errorf("show %q: %w", code, err)
	}
	return writeJSONIndent(out, view)
}

// Recommender is the part of the recommendation client used by the CLI.
type Recommender interface {
	Recommend(ctx context.Context, student recommend.Student) (recommend.Recommendation, error)
}

// runRecommend reads one student profile as JSON from in and prints the
// service's recommendation.
func runRecommend(ctx context.Context, client Recommender, in io.Reader, out io.Writer) error {
	var student recommend.Student
	if err := json.NewDecoder(in).Decode(&student); err != nil {
		return fmt.Errorf("failed to decode student profile: %w", err)
	}

	rec, err := client.Recommend(ctx, student)
	if err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return writeJSONIndent(out, rec)
}

func writeJSON(out io.Writer, v any) error {
	return json.NewEncoder(out).Encode(v)
}

func writeJSONIndent(out io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}
