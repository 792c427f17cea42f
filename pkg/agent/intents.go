package agent

import (
	"context"
	"log"

	"github.com/tmc/langchaingo/llms"

	llmpkg "github.com/shelternet/shelterbot/pkg/llm"
)

// Intent is one of the eight fixed utterance categories.
type Intent string

const (
	IntentHybridLocationDisaster Intent = "hybrid_location_disaster"
	IntentShelterInfo            Intent = "shelter_info"
	IntentShelterSearch          Intent = "shelter_search"
	IntentShelterCount           Intent = "shelter_count"
	IntentShelterCapacity        Intent = "shelter_capacity"
	IntentDisasterGuideline      Intent = "disaster_guideline"
	IntentGeneralKnowledge       Intent = "general_knowledge"
	IntentGeneralChat            Intent = "general_chat"
)

var validIntents = map[Intent]bool{
	IntentHybridLocationDisaster: true,
	IntentShelterInfo:            true,
	IntentShelterSearch:          true,
	IntentShelterCount:           true,
	IntentShelterCapacity:        true,
	IntentDisasterGuideline:      true,
	IntentGeneralKnowledge:       true,
	IntentGeneralChat:            true,
}

// Classification carries the label plus the model's own confidence and
// reasoning. It informs downstream prompting only; routing stays with
// the reasoning step.
type Classification struct {
	Intent     Intent
	Confidence float64
	Reason     string
}

type IntentClassifier struct {
	model llms.Model
}

func NewIntentClassifier(model llms.Model) *IntentClassifier {
	return &IntentClassifier{model: model}
}

// Classify never fails: any model or parse failure degrades to
// general_chat, as does an out-of-vocabulary label.
func (c *IntentClassifier) Classify(ctx context.Context, query string) Classification {
	fallback := Classification{Intent: IntentGeneralChat}

	out, err := llmpkg.Complete(ctx, c.model, intentPrompt, query, llms.WithTemperature(0))
	if err != nil {
		log.Printf("[intent] classification failed: %v", err)
		return fallback
	}

	decoded := llmpkg.DecodeJSON(out)
	if !decoded.Parsed {
		log.Printf("[intent] unparseable output, defaulting to general_chat")
		return fallback
	}

	intent := Intent(decoded.Field("intent", string(IntentGeneralChat)))
	if !validIntents[intent] {
		return fallback
	}

	return Classification{
		Intent:     intent,
		Confidence: decoded.Float("confidence", 0),
		Reason:     decoded.Field("reason", ""),
	}
}
