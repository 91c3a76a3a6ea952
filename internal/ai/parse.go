package ai

import (
	"encoding/json"
	"strings"
)

// ParsedInsight is one insight extracted from a provider response.
type ParsedInsight struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ParseInsights extracts structured insights from raw model output.
// The contract asks providers for a JSON array of {title, body} objects;
// models do not always comply, so parsing degrades in steps:
//
//  1. the whole response is a JSON array
//  2. a bracketed array embedded in surrounding prose
//  3. the raw text becomes a single untitled insight
func ParseInsights(raw string) []ParsedInsight {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	if out := decodeArray(raw); out != nil {
		return out
	}

	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start >= 0 && end > start {
		if out := decodeArray(raw[start : end+1]); out != nil {
			return out
		}
	}

	return []ParsedInsight{{Title: "Financial insight", Body: raw}}
}

func decodeArray(s string) []ParsedInsight {
	var out []ParsedInsight
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}

	kept := out[:0]
	for _, in := range out {
		if strings.TrimSpace(in.Body) == "" {
			continue
		}
		if strings.TrimSpace(in.Title) == "" {
			in.Title = "Financial insight"
		}
		kept = append(kept, in)
	}
	if len(kept) == 0 {
		return nil
	}
	return kept
}
