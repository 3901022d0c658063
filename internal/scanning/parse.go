package scanning

import (
	"encoding/json"
	"fmt"
	"strings"
)

// parseCoinJSON extracts the JSON object from an LLM response and
// decodes it into CoinData. Models are inconsistent about types
// (years arrive as numbers or strings, nulls for unknowns), so the
// decode is tolerant: every attribute is coerced to a string and
// nulls become empty fields.
func parseCoinJSON(text string) (*CoinData, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return nil, fmt.Errorf("invalid JSON object in response")
	}
	text = text[start : end+1]

	var raw struct {
		Value      json.RawMessage    `json:"value"`
		Country    json.RawMessage    `json:"country"`
		Year       json.RawMessage    `json:"year"`
		Mint       json.RawMessage    `json:"mint"`
		Confidence map[string]float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	data := &CoinData{
		Value:      coerceString(raw.Value),
		Country:    coerceString(raw.Country),
		Year:       coerceString(raw.Year),
		Mint:       coerceString(raw.Mint),
		Confidence: raw.Confidence,
	}
	if data.Value == "" && data.Country == "" && data.Year == "" {
		return nil, fmt.Errorf("response contains no coin attributes")
	}
	return data, nil
}

// coerceString renders a JSON scalar as trimmed text; null and absent
// become empty.
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return strings.TrimSpace(string(raw))
}
