package agent

import (
	"context"
	"log"
	"strings"

	"github.com/tmc/langchaingo/llms"

	llmpkg "github.com/shelternet/shelterbot/pkg/llm"
)

// Location types produced by the rewriter.
const (
	LocationSpecific = "specific"
	LocationRegion   = "region"
)

// Rewritten holds the two per-backend query strings: Kakao is tuned for
// the geocoder (landmarks verbatim, regions mapped to their civic
// office), Vector for hybrid retrieval (synonym-expanded keywords).
type Rewritten struct {
	Kakao        string
	Vector       string
	LocationType string
}

// fallbackStopwords are stripped from the raw query when the model's
// structured output cannot be parsed.
var fallbackStopwords = []string{
	"근처", "주변", "인근", "대피소", "피난소", "피난처",
	"알려줘", "찾아줘", "어디", "있어", "의", "를", "을",
}

type QueryRewriter struct {
	model llms.Model
}

func NewQueryRewriter(model llms.Model) *QueryRewriter {
	return &QueryRewriter{model: model}
}

// Rewrite never fails: on any model or parse failure both queries fall
// back to the stoplist-stripped raw query and the location type defaults
// to "specific".
func (r *QueryRewriter) Rewrite(ctx context.Context, query string) Rewritten {
	out, err := llmpkg.Complete(ctx, r.model, rewritePrompt, query, llms.WithTemperature(0))
	if err != nil {
		log.Printf("[rewrite] rewriting failed: %v", err)
		return fallbackRewrite(query)
	}

	decoded := llmpkg.DecodeJSON(out)
	if !decoded.Parsed {
		log.Printf("[rewrite] unparseable output, using stoplist fallback")
		return fallbackRewrite(query)
	}

	locationType := decoded.Field("location_type", LocationSpecific)
	if locationType != LocationRegion {
		locationType = LocationSpecific
	}

	return Rewritten{
		Kakao:        decoded.Field("kakao", query),
		Vector:       decoded.Field("vector", query),
		LocationType: locationType,
	}
}

func fallbackRewrite(query string) Rewritten {
	stripped := StripStopwords(query)
	return Rewritten{
		Kakao:        stripped,
		Vector:       stripped,
		LocationType: LocationSpecific,
	}
}

// StripStopwords removes the fixed filler-word list and collapses
// whitespace.
func StripStopwords(query string) string {
	for _, w := range fallbackStopwords {
		query = strings.ReplaceAll(query, w, "")
	}
	return strings.Join(strings.Fields(query), " ")
}
