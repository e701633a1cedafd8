package docs

import (
	"context"

	"github.com/sqlweaver/sqlweaver/internal/dialect"
	"github.com/sqlweaver/sqlweaver/internal/log"
)

// Unavailable is the sentinel passage returned when documentation
// cannot be retrieved. Retrieval is best-effort and must never block
// generation, so store failures degrade to this value instead of
// propagating.
const Unavailable = "Documentation unavailable"

// DefaultTopK is the number of passages retrieved when the caller does
// not specify k.
const DefaultTopK = 3

// Retriever selects the per-dialect index and returns the most relevant
// documentation passages for a query.
//
// Exactly one store exists per dialect; selection is a deterministic
// map lookup, never fuzzy.
type Retriever struct {
	stores map[dialect.Dialect]Store
	logger log.Logger
}

// NewRetriever creates a Retriever over the given per-dialect stores.
// A nil logger falls back to a no-op logger.
func NewRetriever(stores map[dialect.Dialect]Store, logger log.Logger) *Retriever {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Retriever{stores: stores, logger: logger}
}

// Retrieve returns up to k passages for the dialect ordered by
// descending relevance. k values below 1 use DefaultTopK.
//
// Any failure (missing index, corrupt store, search error) returns
// the Unavailable sentinel as the sole passage. An empty result set is
// not a failure and returns an empty slice.
func (r *Retriever) Retrieve(ctx context.Context, d dialect.Dialect, query string, k int) []string {
	if k < 1 {
		k = DefaultTopK
	}

	store, ok := r.stores[d]
	if !ok || store == nil {
		r.logger.Warn("documentation index missing", "dialect", d.String())
		return []string{Unavailable}
	}

	results, err := store.Search(ctx, query, k)
	if err != nil {
		r.logger.Warn("documentation search failed", "dialect", d.String(), "error", err)
		return []string{Unavailable}
	}

	passages := make([]string, 0, len(results))
	for _, res := range results {
		passages = append(passages, res.Passage.Text)
	}
	return passages
}
