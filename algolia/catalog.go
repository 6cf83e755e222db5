package algolia

import (
	"context"
	"net/http"
	"strings"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/errs"
	"github.com/algolia/algoliasearch-client-go/v3/algolia/opt"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// defaultPageSize is the Algolia page size used while collecting hits.
const defaultPageSize = 1000

// listAttributes are the only fields fetched for list views.
var listAttributes = []string{"code", "name", "id"}

// Catalog implements unicatalog.Catalog over an Algolia index.
type Catalog struct {
	client    *Client
	indexName string
	pageSize  int
}

var _ unicatalog.Catalog = (*Catalog)(nil)

// NewCatalog creates a catalogue reader for the specified index.
func NewCatalog(client *Client, indexName string) *Catalog {
	return &Catalog{
		client:    client,
		indexName: indexName,
		pageSize:  defaultPageSize,
	}
}

// FetchAll implements unicatalog.Catalog. Every page of hits is collected,
// so an empty term returns the whole index.
func (c *Catalog) FetchAll(ctx context.Context, term string) ([]unicatalog.University, error) {
	ctx, span := c.client.tracer.Start(ctx, "algolia.fetch_all",
		trace.WithAttributes(
			attribute.String("algolia.index_name", c.indexName),
			attribute.String("algolia.query", term),
		),
	)
	defer span.End()

	algoliaClient, err := c.client.getClient()
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "failed to get Algolia client"), unicatalog.ErrBackendUnavailable)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, err
	}

	index := algoliaClient.InitIndex(c.indexName)

	universities := make([]unicatalog.University, 0)
	for page := 0; ; page++ {
		if ctx.Err() != nil {
			return nil, errors.Mark(ctx.Err(), unicatalog.ErrCanceled)
		}

		res, err := index.Search(term,
			opt.Page(page),
			opt.HitsPerPage(c.pageSize),
			opt.AttributesToRetrieve(listAttributes...),
			ctx,
		)
		if err != nil {
			err = classify(ctx, err, "Algolia search failed")
			span.RecordError(err)
			span.SetStatus(codes.Error, unicatalog.Code(err).String())
			return nil, err
		}

		var hits []unicatalog.University
		if err := res.UnmarshalHits(&hits); err != nil {
			err = errors.Mark(errors.Wrap(err, "failed to decode Algolia hits"), unicatalog.ErrMalformedResponse)
			span.RecordError(err)
			span.SetStatus(codes.Error, "malformed hits")
			return nil, err
		}
		universities = append(universities, hits...)

		if res.Page+1 >= res.NbPages {
			break
		}
	}

	span.SetAttributes(attribute.Int("algolia.hit_count", len(universities)))
	span.SetStatus(codes.Ok, "")
	return universities, nil
}

// FetchDetail implements unicatalog.Catalog. Records are keyed by code.
func (c *Catalog) FetchDetail(ctx context.Context, code string) (*unicatalog.Detail, error) {
	code = strings.TrimSpace(code)

	ctx, span := c.client.tracer.Start(ctx, "algolia.fetch_detail",
		trace.WithAttributes(
			attribute.String("algolia.index_name", c.indexName),
			attribute.String("algolia.object_id", code),
		),
	)
	defer span.End()

	if code == "" {
		return nil, errors.Mark(errors.New("university code is empty"), unicatalog.ErrNotFound)
	}

	algoliaClient, err := c.client.getClient()
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "failed to get Algolia client"), unicatalog.ErrBackendUnavailable)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return nil, err
	}

	index := algoliaClient.InitIndex(c.indexName)

	var detail unicatalog.Detail
	if err := index.GetObject(code, &detail, ctx); err != nil {
		err = classify(ctx, err, "Algolia get object failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, unicatalog.Code(err).String())
		return nil, err
	}

	if detail.Benchmarks == nil {
		detail.Benchmarks = []unicatalog.Benchmark{}
	}

	span.SetStatus(codes.Ok, "")
	return &detail, nil
}

// classify maps an Algolia failure onto the catalogue error sentinels.
func classify(ctx context.Context, err error, msg string) error {
	wrapped := errors.Wrap(err, msg)
	_, notFound := errs.IsAlgoliaErrWithCode(err, http.StatusNotFound)
	switch {
	case ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return errors.Mark(wrapped, unicatalog.ErrCanceled)
	case notFound:
		return errors.Mark(errors.Mark(wrapped, unicatalog.ErrNetwork), unicatalog.ErrNotFound)
	default:
		return errors.Mark(wrapped, unicatalog.ErrNetwork)
	}
}
