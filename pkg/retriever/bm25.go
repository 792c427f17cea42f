package retriever

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/shelternet/shelterbot/internal/models"
)

const (
	bm25K1 = 1.5
	bm25B  = 0.75
)

// BM25 is a lexical retriever over a fixed document set, materialized
// once at startup. Tokenization is whitespace splitting over lowercased
// content, which is enough for the short Korean facility/guideline texts
// this index serves.
type BM25 struct {
	docs   []models.Document
	tokens [][]string
	df     map[string]int
	avgLen float64
	limit  int
}

// NewBM25 builds the inverted term statistics for docs. Fails when the
// collection is empty so callers can degrade to semantic-only retrieval.
func NewBM25(docs []models.Document, limit int) (*BM25, error) {
	if len(docs) == 0 {
		return nil, fmt.Errorf("bm25: empty document set")
	}
	if limit <= 0 {
		limit = 5
	}

	r := &BM25{
		docs:   docs,
		tokens: make([][]string, len(docs)),
		df:     make(map[string]int),
		limit:  limit,
	}

	var totalLen int
	for i, doc := range docs {
		toks := tokenize(doc.Content)
		r.tokens[i] = toks
		totalLen += len(toks)

		seen := make(map[string]bool, len(toks))
		for _, t := range toks {
			if !seen[t] {
				seen[t] = true
				r.df[t]++
			}
		}
	}
	r.avgLen = float64(totalLen) / float64(len(docs))

	return r, nil
}

// Invoke returns the top documents by BM25 score. Documents that match no
// query term are not returned.
func (r *BM25) Invoke(_ context.Context, query string) ([]models.Document, error) {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return nil, nil
	}

	type scored struct {
		idx   int
		score float64
	}
	results := make([]scored, 0, len(r.docs))

	n := float64(len(r.docs))
	for i := range r.docs {
		tf := make(map[string]int, len(r.tokens[i]))
		for _, t := range r.tokens[i] {
			tf[t]++
		}

		var score float64
		docLen := float64(len(r.tokens[i]))
		for _, q := range qTokens {
			f := float64(tf[q])
			if f == 0 {
				continue
			}
			idf := math.Log(1 + (n-float64(r.df[q])+0.5)/(float64(r.df[q])+0.5))
			score += idf * (f * (bm25K1 + 1)) / (f + bm25K1*(1-bm25B+bm25B*docLen/r.avgLen))
		}
		if score > 0 {
			results = append(results, scored{idx: i, score: score})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].score > results[b].score
	})

	if len(results) > r.limit {
		results = results[:r.limit]
	}
	docs := make([]models.Document, len(results))
	for i, s := range results {
		docs[i] = r.docs[s.idx]
	}
	return docs, nil
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}
