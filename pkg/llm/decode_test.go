package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		parsed bool
	}{
		{"plain object", `{"intent": "shelter_search"}`, true},
		{"fenced", "```json\n{\"intent\": \"shelter_search\"}\n```", true},
		{"prose wrapped", `Here is the result: {"intent": "shelter_search"} hope it helps`, true},
		{"no object", "I could not produce JSON, sorry.", false},
		{"broken object", `{"intent": "shelter_search"`, false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DecodeJSON(tt.input)
			assert.Equal(t, tt.parsed, d.Parsed)
			assert.Equal(t, tt.input, d.Raw)
		})
	}
}

func TestDecodedField(t *testing.T) {
	d := DecodeJSON(`{"intent": "shelter_search", "confidence": 0.92, "empty": ""}`)

	assert.Equal(t, "shelter_search", d.Field("intent", "general_chat"))
	assert.Equal(t, "general_chat", d.Field("missing", "general_chat"))
	assert.Equal(t, "general_chat", d.Field("empty", "general_chat"))
	assert.InDelta(t, 0.92, d.Float("confidence", 0), 1e-9)
	assert.Equal(t, 0.5, d.Float("missing", 0.5))
}

func TestDecodedFieldUnparsed(t *testing.T) {
	d := DecodeJSON("no json here")

	assert.Equal(t, "fallback", d.Field("intent", "fallback"))
	assert.Equal(t, 1.0, d.Float("confidence", 1.0))
}
