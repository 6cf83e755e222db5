// Package algolia mirrors the university catalogue into an Algolia index
// and serves it back through unicatalog.Catalog.
package algolia

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/letmevibethatforyou/unicatalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials.
type Secrets struct {
	// AppID is the Algolia application ID.
	AppID string `json:"app_id"`
	// APIKey is an Algolia API key. Syncing needs a write key; searching
	// works with a search-only key.
	APIKey string `json:"api_key"`
}

// FetchSecrets is a function type that retrieves Algolia credentials.
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, fmt.Errorf("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, fmt.Errorf("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// Client lazily builds the Algolia search client on first use.
type Client struct {
	getClient func() (*search.Client, error)
	tracer    trace.Tracer
}

func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, fmt.Errorf("failed to fetch secrets: %w", err)
		}

		if secrets.AppID == "" {
			return nil, fmt.Errorf("AppID is empty")
		}

		if secrets.APIKey == "" {
			return nil, fmt.Errorf("APIKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.APIKey), nil
	})

	return &Client{
		getClient: getClient,
		tracer:    otel.Tracer("unicatalog-algolia"),
	}
}

// SaveUniversity upserts one university, benchmarks included. The record
// is keyed by university code so FetchDetail can read it back directly.
func (c *Client) SaveUniversity(ctx context.Context, indexName string, detail *unicatalog.Detail) error {
	ctx, span := c.tracer.Start(ctx, "algolia.save_university",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.String("algolia.object_id", detail.Code),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	index := client.InitIndex(indexName)

	_, err = index.SaveObject(toObject(detail), ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to save university to index %s", indexName))
		return fmt.Errorf("failed to save university %s to Algolia index %s: %w", detail.Code, indexName, err)
	}

	span.SetStatus(codes.Ok, "university saved successfully")
	return nil
}

// DeleteUniversity removes the record for code.
func (c *Client) DeleteUniversity(ctx context.Context, indexName string, code string) error {
	ctx, span := c.tracer.Start(ctx, "algolia.delete_university",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.String("algolia.object_id", code),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	index := client.InitIndex(indexName)

	_, err = index.DeleteObject(code, ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to delete university from index %s", indexName))
		return fmt.Errorf("failed to delete university %s from Algolia index %s: %w", code, indexName, err)
	}

	span.SetStatus(codes.Ok, "university deleted successfully")
	return nil
}

// BatchSaveUniversities upserts many universities in one call.
func (c *Client) BatchSaveUniversities(ctx context.Context, indexName string, details []*unicatalog.Detail) error {
	if len(details) == 0 {
		return nil
	}

	ctx, span := c.tracer.Start(ctx, "algolia.batch_save_universities",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(details)),
		),
	)
	defer span.End()

	client, err := c.getClient()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	objects := make([]map[string]interface{}, 0, len(details))
	for _, d := range details {
		objects = append(objects, toObject(d))
	}

	index := client.InitIndex(indexName)

	_, err = index.SaveObjects(objects, ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("failed to batch save %d universities to index %s", len(details), indexName))
		return fmt.Errorf("failed to batch save universities to Algolia index %s: %w", indexName, err)
	}

	span.SetStatus(codes.Ok, fmt.Sprintf("batch saved %d universities successfully", len(details)))
	return nil
}

// toObject converts a detail into the Algolia record layout.
func toObject(d *unicatalog.Detail) map[string]interface{} {
	benchmarks := d.Benchmarks
	if benchmarks == nil {
		benchmarks = []unicatalog.Benchmark{}
	}
	return map[string]interface{}{
		"objectID":   d.Code,
		"code":       d.Code,
		"name":       d.Name,
		"id":         d.ID,
		"benchmarks": benchmarks,
	}
}
