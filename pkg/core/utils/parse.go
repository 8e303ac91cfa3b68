// Package utils holds small cross-cutting helpers: lenient JSON
// parsing for LLM output, markdown cleanup, and payload sanitizing.
package utils

import (
	"encoding/json"
	"fmt"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
)

// RepairJSON attempts to fix common JSON errors from LLM outputs:
// missing quotes around keys, single quotes, unclosed brackets,
// trailing commas, markdown code fences.
func RepairJSON(malformed string) (string, error) {
	repaired, err := jsonrepair.RepairJSON(malformed)
	if err != nil {
		return "", fmt.Errorf("json repair failed: %w", err)
	}
	return repaired, nil
}

// ParseHJSON parses human-friendly JSON (comments, unquoted keys,
// optional commas) and returns standard JSON.
func ParseHJSON(input string) (string, error) {
	var result interface{}
	if err := hjson.Unmarshal([]byte(input), &result); err != nil {
		return "", fmt.Errorf("hjson parse failed: %w", err)
	}
	out, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// SmartParse tries multiple strategies, strictest first, to decode the
// input into schema: standard JSON, then repair, then Hjson.
func SmartParse(input string, schema interface{}) error {
	if err := json.Unmarshal([]byte(input), schema); err == nil {
		return nil
	}
	if repaired, err := RepairJSON(input); err == nil {
		if err := json.Unmarshal([]byte(repaired), schema); err == nil {
			return nil
		}
	}
	if relaxed, err := ParseHJSON(input); err == nil {
		if err := json.Unmarshal([]byte(relaxed), schema); err == nil {
			return nil
		}
	}
	return fmt.Errorf("all parsing strategies failed")
}
