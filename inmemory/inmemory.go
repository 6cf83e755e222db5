// Package inmemory provides a Catalog held entirely in process memory. It
// backs offline runs of the catalogue CLI and serves as a realistic
// catalogue in tests.
package inmemory

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
)

// Catalog implements unicatalog.Catalog over an in-memory list of
// universities. List order is insertion order.
type Catalog struct {
	mu        sync.RWMutex
	details   []unicatalog.Detail
	codeIndex map[string]int // maps university code to index in details
}

var _ unicatalog.Catalog = (*Catalog)(nil)

// New creates an empty catalogue.
// The catalogue is ready to use and is safe for concurrent operations.
func New() *Catalog {
	return &Catalog{
		details:   make([]unicatalog.Detail, 0),
		codeIndex: make(map[string]int),
	}
}

// Add stores detail, replacing any university with the same code.
func (c *Catalog) Add(detail unicatalog.Detail) {
	detail.Benchmarks = append([]unicatalog.Benchmark{}, detail.Benchmarks...)

	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, exists := c.codeIndex[detail.Code]; exists {
		c.details[idx] = detail
		return
	}
	c.codeIndex[detail.Code] = len(c.details)
	c.details = append(c.details, detail)
}

// Load reads a JSON array of university details from r and adds each one.
func Load(r io.Reader) (*Catalog, error) {
	var details []unicatalog.Detail
	if err := json.NewDecoder(r).Decode(&details); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalogue")
	}

	c := New()
	for i, d := range details {
		if strings.TrimSpace(d.Code) == "" {
			return nil, errors.Newf("university %d has no code", i)
		}
		c.Add(d)
	}
	return c, nil
}

// Size returns the number of universities stored.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.details)
}

// FetchAll returns every university whose code or name contains term,
// ignoring case. An empty term returns the whole catalogue.
func (c *Catalog) FetchAll(ctx context.Context, term string) ([]unicatalog.University, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "fetch universities"), unicatalog.ErrCanceled)
	}

	needle := strings.ToLower(term)

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]unicatalog.University, 0, len(c.details))
	for _, d := range c.details {
		if needle == "" ||
			strings.Contains(strings.ToLower(d.Code), needle) ||
			strings.Contains(strings.ToLower(d.Name), needle) {
			out = append(out, d.University)
		}
	}
	return out, nil
}

// FetchDetail returns the university with code and its benchmarks.
func (c *Catalog) FetchDetail(ctx context.Context, code string) (*unicatalog.Detail, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "fetch university"), unicatalog.ErrCanceled)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	idx, exists := c.codeIndex[strings.TrimSpace(code)]
	if !exists {
		return nil, errors.Mark(errors.Newf("university %q not found", code), unicatalog.ErrNotFound)
	}

	d := c.details[idx]
	d.Benchmarks = append([]unicatalog.Benchmark{}, d.Benchmarks...)
	return &d, nil
}
