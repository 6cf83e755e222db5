package algolia

import (
	"context"
	"net/http"
	"testing"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/errs"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/unicatalog"
)

func TestNewCatalog(t *testing.T) {
	client := NewClient(StaticSecrets("test-app", "test-key"))
	catalog := NewCatalog(client, "universities")

	if catalog.client != client {
		t.Error("Catalog client not set correctly")
	}
	if catalog.indexName != "universities" {
		t.Errorf("Expected index name 'universities', got '%s'", catalog.indexName)
	}
	if catalog.pageSize != defaultPageSize {
		t.Errorf("Expected page size %d, got %d", defaultPageSize, catalog.pageSize)
	}
}

func TestCatalog_BackendUnavailable(t *testing.T) {
	catalog := NewCatalog(NewClient(StaticSecrets("", "")), "universities")
	ctx := context.Background()

	_, err := catalog.FetchAll(ctx, "")
	if !errors.Is(err, unicatalog.ErrBackendUnavailable) {
		t.Errorf("FetchAll: expected ErrBackendUnavailable, got %v", err)
	}

	_, err = catalog.FetchDetail(ctx, "IUH")
	if !errors.Is(err, unicatalog.ErrBackendUnavailable) {
		t.Errorf("FetchDetail: expected ErrBackendUnavailable, got %v", err)
	}
}

func TestCatalog_FetchDetailEmptyCode(t *testing.T) {
	catalog := NewCatalog(NewClient(StaticSecrets("test-app", "test-key")), "universities")

	_, err := catalog.FetchDetail(context.Background(), "   ")
	if !errors.Is(err, unicatalog.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCatalog_FetchAllCanceled(t *testing.T) {
	catalog := NewCatalog(NewClient(StaticSecrets("test-app", "test-key")), "universities")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := catalog.FetchAll(ctx, "iuh")
	if !errors.Is(err, unicatalog.ErrCanceled) {
		t.Errorf("Expected ErrCanceled, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	live := context.Background()
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name     string
		ctx      context.Context
		err      error
		expected unicatalog.ErrorCode
	}{
		{"generic failure", live, errors.New("connection reset"), unicatalog.ErrCodeNetwork},
		{"deadline", live, context.DeadlineExceeded, unicatalog.ErrCodeCanceled},
		{"canceled context", canceled, errors.New("request aborted"), unicatalog.ErrCodeCanceled},
		{"object not found", live, &errs.AlgoliaErr{Message: "ObjectID does not exist", Status: http.StatusNotFound}, unicatalog.ErrCodeNotFound},
		{"object not found by value", live, errs.AlgoliaErr{Message: "ObjectID does not exist", Status: http.StatusNotFound}, unicatalog.ErrCodeNotFound},
		{"server error", live, &errs.AlgoliaErr{Message: "Internal error", Status: http.StatusInternalServerError}, unicatalog.ErrCodeNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.ctx, tt.err, "test")
			if got := unicatalog.Code(err); got != tt.expected {
				t.Errorf("Expected %v, got %v (%v)", tt.expected, got, err)
			}
			// Not found is still a network-class failure.
			if tt.expected == unicatalog.ErrCodeNotFound && !errors.Is(err, unicatalog.ErrNetwork) {
				t.Errorf("Expected not found to also be marked ErrNetwork, got %v", err)
			}
		})
	}
}
