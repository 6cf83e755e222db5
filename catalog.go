package unicatalog

import "context"

// Catalog is the read side of the remote university catalogue.
//
// Implementations are stateless with respect to results: they never cache,
// that is the job of the searchcache package.
type Catalog interface {
	// FetchAll returns the catalogue. A non-empty term is forwarded to the
	// backend as a hint, but callers must not assume the backend filtered.
	FetchAll(ctx context.Context, term string) ([]University, error)

	// FetchDetail returns one university and its benchmark records.
	FetchDetail(ctx context.Context, code string) (*Detail, error)
}
