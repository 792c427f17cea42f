package llm

import (
	"strings"

	"github.com/tidwall/gjson"
)

// Decoded is the tagged result of parsing model output that is supposed
// to contain a JSON object. When Parsed is false the caller must fall
// back to its own defaults; Raw always holds the original text.
type Decoded struct {
	Parsed bool
	Raw    string
	body   string
}

// DecodeJSON extracts the first JSON object embedded in free-form model
// text. Models wrap their output in code fences or prose often enough
// that a plain json.Unmarshal is not good enough.
func DecodeJSON(raw string) Decoded {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Decoded{Raw: raw}
	}

	body := text[start : end+1]
	if !gjson.Valid(body) {
		return Decoded{Raw: raw}
	}
	return Decoded{Parsed: true, Raw: raw, body: body}
}

// Field returns the string value at path, or fallback when the output was
// not parsed or the field is absent.
func (d Decoded) Field(path, fallback string) string {
	if !d.Parsed {
		return fallback
	}
	v := gjson.Get(d.body, path)
	if !v.Exists() || v.String() == "" {
		return fallback
	}
	return v.String()
}

// Float returns the numeric value at path, or fallback.
func (d Decoded) Float(path string, fallback float64) float64 {
	if !d.Parsed {
		return fallback
	}
	v := gjson.Get(d.body, path)
	if !v.Exists() {
		return fallback
	}
	return v.Float()
}
