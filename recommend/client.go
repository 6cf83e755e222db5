// Package recommend is a thin client for the external recommendation
// service. The service's scoring is opaque; only request and response
// shapes are modelled.
package recommend

import (
	"context"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/internal/transport"
)

// Student is the profile posted to /recommend. Field names follow the
// service's wire format.
type Student struct {
	Scores          map[string]float64 `json:"scores"`
	SubjectGroup    string             `json:"subject_group,omitempty"`
	PreferredMethod string             `json:"preferred_method,omitempty"`
	Interests       []string           `json:"interests,omitempty"`
	Region          string             `json:"region,omitempty"`
}

// Recommendation is the service's answer, passed through untouched.
type Recommendation map[string]any

// Generated is the response of /generate-data.
type Generated struct {
	Count    int    `json:"count"`
	FilePath string `json:"file_path"`
}

type generateRequest struct {
	NumSamples int    `json:"num_samples"`
	Method     string `json:"method"`
}

// Client talks to the recommendation service.
type Client struct {
	http *transport.Client
}

// NewClient creates a client rooted at baseURL.
func NewClient(baseURL string, opts ...transport.Option) (*Client, error) {
	t, err := transport.New(baseURL, "unicatalog-recommend", opts...)
	if err != nil {
		return nil, err
	}
	return &Client{http: t}, nil
}

// Recommend posts a student profile and returns the service's recommendation.
func (c *Client) Recommend(ctx context.Context, student Student) (Recommendation, error) {
	if len(student.Scores) == 0 {
		return nil, errors.New("recommend: student has no scores")
	}

	var out Recommendation
	if err := c.http.Post(ctx, "recommend.recommend", []string{"recommend"}, student, &out); err != nil {
		return nil, err
	}
	if out == nil {
		return nil, errors.Mark(errors.New("recommend: empty response"), unicatalog.ErrMalformedResponse)
	}
	return out, nil
}

// GenerateData asks the service to synthesize numSamples training records
// using the given generation method.
func (c *Client) GenerateData(ctx context.Context, numSamples int, method string) (*Generated, error) {
	if numSamples <= 0 {
		return nil, errors.Newf("recommend: num_samples must be positive, got %d", numSamples)
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, errors.New("recommend: method is required")
	}

	var out Generated
	req := generateRequest{NumSamples: numSamples, Method: method}
	if err := c.http.Post(ctx, "recommend.generate_data", []string{"generate-data"}, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
