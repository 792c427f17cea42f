package types

import (
	"context"

	"github.com/shelternet/shelterbot/internal/models"
)

// DocStore is the narrow surface the core needs from the document store.
// Filters are equality conditions over metadata fields; multiple entries
// are combined with AND.
type DocStore interface {
	Get(ctx context.Context, filter map[string]string) ([]models.Document, error)
	SimilaritySearch(ctx context.Context, query string, k int, filter map[string]string) ([]models.Document, error)
}

// Retriever returns an ordered sequence of documents for a query.
type Retriever interface {
	Invoke(ctx context.Context, query string) ([]models.Document, error)
}

// Geocoder resolves a place-name string to coordinates and a canonical
// place label.
type Geocoder interface {
	Resolve(ctx context.Context, query string) (*models.Place, error)
}

// Embedder turns texts into embedding vectors.
type Embedder interface {
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}
