package retriever

import (
	"context"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/internal/types"
)

// Vector is the semantic retriever: a top-k similarity search against the
// document store, restricted to a fixed metadata filter.
type Vector struct {
	store  types.DocStore
	k      int
	filter map[string]string
}

func NewVector(store types.DocStore, k int, filter map[string]string) *Vector {
	if k <= 0 {
		k = 5
	}
	return &Vector{store: store, k: k, filter: filter}
}

func (r *Vector) Invoke(ctx context.Context, query string) ([]models.Document, error) {
	return r.store.SimilaritySearch(ctx, query, r.k, r.filter)
}
