package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls a JSON document out of raw model output, stripping
// markdown code fences and any prose around the outermost object. Returns an
// error when no parseable JSON object is present.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty model output")
	}

	// Strip markdown code fences
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		endIdx := len(lines) - 1
		for i := len(lines) - 1; i > 0; i-- {
			if strings.TrimSpace(lines[i]) == "```" {
				endIdx = i
				break
			}
		}
		text = strings.Join(lines[1:endIdx], "\n")
		text = strings.TrimSpace(text)
	}

	// Models sometimes wrap the object in commentary; cut to the outermost
	// braces before parsing.
	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no JSON object in model output")
		}
		text = text[start : end+1]
	}

	var check json.RawMessage
	if err := json.Unmarshal([]byte(text), &check); err != nil {
		return nil, fmt.Errorf("parse model output as JSON: %w", err)
	}
	return json.RawMessage(text), nil
}

// DecodeJSON extracts JSON from model output and unmarshals it into v.
func DecodeJSON(text string, v any) error {
	raw, err := ExtractJSON(text)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}
