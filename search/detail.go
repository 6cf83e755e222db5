package search

import (
	"context"

	"github.com/letmevibethatforyou/unicatalog"
	"github.com/letmevibethatforyou/unicatalog/grouping"
)

// DetailView is a university with its benchmarks grouped by admission method.
type DetailView struct {
	University unicatalog.University `json:"university"`
	Benchmarks *grouping.Grouped     `json:"benchmarks"`
}

// LoadDetail fetches code from catalog and groups the result.
func LoadDetail(ctx context.Context, catalog unicatalog.Catalog, code string) (*DetailView, error) {
	detail, err := catalog.FetchDetail(ctx, code)
	if err != nil {
		return nil, err
	}
	return &DetailView{
		University: detail.University,
		Benchmarks: grouping.ByMethod(detail.Benchmarks),
	}, nil
}
