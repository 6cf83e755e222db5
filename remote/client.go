// Package remote implements unicatalog.Catalog against the HTTP catalogue API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/internal/transport"
)

// Client is a stateless catalogue client. It never caches.
type Client struct {
	http *transport.Client
}

var _ unicatalog.Catalog = (*Client)(nil)

// NewClient creates a catalogue client rooted at baseURL, e.g.
// "https://api.example.com/api".
func NewClient(baseURL string, opts ...transport.Option) (*Client, error) {
	t, err := transport.New(baseURL, "unicatalog-remote", opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: t}, nil
}

// listEnvelope is the body of GET /universities.
type listEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

// detailEnvelope is the body of GET /universities/{code}.
type detailEnvelope struct {
	Data *unicatalog.Detail `json:"data"`
}

// FetchAll implements unicatalog.Catalog.
func (c *Client) FetchAll(ctx context.Context, term string) ([]unicatalog.University, error) {
	var query url.Values
	if term != "" {
		query = url.Values{"search": {term}}
	}

	var env listEnvelope
	if err := c.http.Get(ctx, "catalog.fetch_all", []string{"universities"}, query, &env); err != nil {
		return nil, err
	}

	if !env.Success {
		return nil, errors.Mark(errors.New("catalogue response did not report success"), unicatalog.ErrMalformedResponse)
	}

	data := bytes.TrimSpace(env.Data)
	if len(data) == 0 || data[0] != '[' {
		return nil, errors.Mark(errors.New("catalogue response data is not an array"), unicatalog.ErrMalformedResponse)
	}

	var universities []unicatalog.University
	if err := json.Unmarshal(data, &universities); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to decode catalogue data"), unicatalog.ErrMalformedResponse)
	}
	if universities == nil {
		universities = []unicatalog.University{}
	}
	return universities, nil
}

// FetchDetail implements unicatalog.Catalog.
func (c *Client) FetchDetail(ctx context.Context, code string) (*unicatalog.Detail, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.Mark(errors.New("university code is empty"), unicatalog.ErrNotFound)
	}

	var env detailEnvelope
	if err := c.http.Get(ctx, "catalog.fetch_detail", []string{"universities", code}, nil, &env); err != nil {
		return nil, err
	}

	if env.Data == nil {
		return nil, errors.Mark(errors.Newf("detail response for %q has no data", code), unicatalog.ErrMalformedResponse)
	}
	if env.Data.Benchmarks == nil {
		env.Data.Benchmarks = []unicatalog.Benchmark{}
	}
	return env.Data, nil
}
