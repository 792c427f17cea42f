package retriever

import (
	"context"
	"log"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/internal/types"
)

// maxResults caps every hybrid invocation.
const maxResults = 10

// dedupePrefixLen is the content-prefix fingerprint length used to drop
// near-duplicate chunks surfaced by different sub-retrievers.
const dedupePrefixLen = 100

type weightedRetriever struct {
	retriever types.Retriever
	weight    float64
}

// Hybrid blends a semantic and a lexical retriever over the same filtered
// document set. Sub-retrievers are queried in order; a failing
// sub-retriever contributes nothing. Results keep insertion order, are
// deduplicated by content prefix and truncated to maxResults. The
// configured weight is carried on each document's metadata as
// retriever_weight for downstream consumers; no re-ranking happens here.
type Hybrid struct {
	name string
	subs []weightedRetriever
}

// NewHybrid builds a retriever over store filtered by docType. vectorK is
// the semantic top-k. When the lexical index cannot be built (e.g. the
// collection is empty) the retriever degrades to semantic-only with
// weight 1.0.
func NewHybrid(ctx context.Context, store types.DocStore, docType string, vectorK int, vectorWeight, lexicalWeight float64) (*Hybrid, error) {
	filter := map[string]string{"type": docType}
	vector := NewVector(store, vectorK, filter)

	docs, err := store.Get(ctx, filter)
	if err != nil {
		log.Printf("[retriever] %s: loading lexical corpus failed: %v", docType, err)
	}

	var lexical *BM25
	if err == nil {
		lexical, err = NewBM25(docs, 5)
		if err != nil {
			log.Printf("[retriever] %s: lexical index unavailable: %v", docType, err)
		}
	}

	h := &Hybrid{name: docType}
	if lexical != nil {
		h.subs = []weightedRetriever{
			{retriever: vector, weight: vectorWeight},
			{retriever: lexical, weight: lexicalWeight},
		}
	} else {
		h.subs = []weightedRetriever{{retriever: vector, weight: 1.0}}
	}
	return h, nil
}

// NewHybridFromRetrievers wires pre-built sub-retrievers; used by tests
// and by callers that manage their own indexes.
func NewHybridFromRetrievers(name string, subs []types.Retriever, weights []float64) *Hybrid {
	h := &Hybrid{name: name}
	for i, r := range subs {
		w := 1.0 / float64(len(subs))
		if i < len(weights) {
			w = weights[i]
		}
		h.subs = append(h.subs, weightedRetriever{retriever: r, weight: w})
	}
	return h
}

func (h *Hybrid) Invoke(ctx context.Context, query string) ([]models.Document, error) {
	var all []models.Document
	for _, sub := range h.subs {
		docs, err := sub.retriever.Invoke(ctx, query)
		if err != nil {
			log.Printf("[retriever] %s: sub-retriever failed: %v", h.name, err)
			continue
		}
		for _, doc := range docs {
			all = append(all, tagWeight(doc, sub.weight))
		}
	}

	seen := make(map[string]bool, len(all))
	unique := make([]models.Document, 0, len(all))
	for _, doc := range all {
		id := contentPrefix(doc.Content)
		if seen[id] {
			continue
		}
		seen[id] = true
		unique = append(unique, doc)
	}

	if len(unique) > maxResults {
		unique = unique[:maxResults]
	}
	return unique, nil
}

// tagWeight attaches retriever_weight on a copy of the metadata so the
// store-owned documents stay immutable.
func tagWeight(doc models.Document, weight float64) models.Document {
	md := make(map[string]interface{}, len(doc.Metadata)+1)
	for k, v := range doc.Metadata {
		md[k] = v
	}
	md["retriever_weight"] = weight
	doc.Metadata = md
	return doc
}

func contentPrefix(content string) string {
	runes := []rune(content)
	if len(runes) > dedupePrefixLen {
		runes = runes[:dedupePrefixLen]
	}
	return string(runes)
}
