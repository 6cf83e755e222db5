// Package transport is the JSON-over-HTTP plumbing shared by the catalogue
// and recommendation clients. It owns tracing, request ids, the optional
// circuit breaker and the mapping of failures onto unicatalog sentinels.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/segmentio/ksuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// RequestIDHeader carries a ksuid per outgoing request.
const RequestIDHeader = "X-Request-ID"

// maxErrorBody bounds how much of a failed response body ends up in an error.
const maxErrorBody = 512

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client issues JSON requests against a single base URL.
type Client struct {
	baseURL *url.URL
	http    Doer
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(d Doer) Option {
	return func(c *Client) {
		c.http = d
	}
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// WithBreaker wraps every round trip in a circuit breaker that opens after
// maxFailures consecutive network failures and probes again after timeout.
// Malformed bodies do not count as failures.
func WithBreaker(name string, timeout time.Duration, maxFailures uint32) Option {
	return func(c *Client) {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, unicatalog.ErrNotFound) || errors.Is(err, unicatalog.ErrCanceled)
			},
		})
	}
}

// New creates a Client rooted at baseURL.
func New(baseURL, tracerName string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf("base URL %q must be http or https", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 30 * time.Second},
		tracer:  otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get issues a GET to the escaped path segments and decodes the JSON body
// into out.
func (c *Client) Get(ctx context.Context, span string, segments []string, query url.Values, out any) error {
	return c.do(ctx, span, http.MethodGet, segments, query, nil, out)
}

// Post issues a POST with body encoded as JSON and decodes the response into out.
func (c *Client) Post(ctx context.Context, span string, segments []string, body, out any) error {
	return c.do(ctx, span, http.MethodPost, segments, nil, body, out)
}

func (c *Client) do(ctx context.Context, spanName, method string, segments []string, query url.Values, body, out any) error {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := c.baseURL.JoinPath(escaped...)
	if len(query) > 0 {
		target.RawQuery = encodeQuery(query)
	}

	requestID := ksuid.New().String()

	ctx, span := c.tracer.Start(ctx, spanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target.String()),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to encode request body")
			return errors.Wrap(err, "failed to encode request body")
		}
	}

	var raw []byte
	roundTrip := func() error {
		var err error
		raw, err = c.roundTrip(ctx, method, target.String(), requestID, payload, span)
		return err
	}

	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(func() (interface{}, error) {
			return nil, roundTrip()
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			err = errors.Mark(errors.Wrapf(err, "breaker %s", c.breaker.Name()), unicatalog.ErrBackendUnavailable)
		}
	} else {
		err = roundTrip()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, unicatalog.Code(err).String())
		return err
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			err = errors.Mark(errors.Wrapf(err, "%s %s: decode body", method, target.Path), unicatalog.ErrMalformedResponse)
			span.RecordError(err)
			span.SetStatus(codes.Error, "malformed response")
			return err
		}
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// encodeQuery percent-encodes query with spaces as %20 rather than '+'.
// A literal '+' is already escaped to %2B by Encode.
func encodeQuery(query url.Values) string {
	return strings.ReplaceAll(query.Encode(), "+", "%20")
}

func (c *Client) roundTrip(ctx context.Context, method, target, requestID string, payload []byte, span trace.Span) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, errors.Mark(errors.Wrapf(err, "%s %s", method, req.URL.Path), unicatalog.ErrCanceled)
		}
		return nil, errors.Mark(errors.Wrapf(err, "%s %s", method, req.URL.Path), unicatalog.ErrNetwork)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrapf(err, "%s %s: read body", method, req.URL.Path), unicatalog.ErrNetwork)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet := strings.TrimSpace(string(raw))
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		err := errors.Mark(errors.Newf("%s %s: unexpected status %d: %s", method, req.URL.Path, resp.StatusCode, snippet), unicatalog.ErrNetwork)
		if resp.StatusCode == http.StatusNotFound {
			err = errors.Mark(err, unicatalog.ErrNotFound)
		}
		return nil, err
	}

	return raw, nil
}
