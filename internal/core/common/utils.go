package common

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON payload out of a model response, handling the
// usual quirks: ```json fences, leading prose, trailing commentary. Both
// objects and arrays are accepted.
func ExtractJSON(response string) (string, error) {
	s := strings.TrimSpace(response)

	if l := strings.LastIndex(s, "```json"); l != -1 {
		rest := s[l+len("```json"):]
		if r := strings.Index(rest, "```"); r != -1 {
			s = strings.TrimSpace(rest[:r])
		}
	}

	start := strings.IndexAny(s, "{[")
	if start == -1 {
		return "", fmt.Errorf("no JSON payload found in response")
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end <= start {
		return "", fmt.Errorf("unterminated JSON payload in response")
	}
	s = s[start : end+1]

	if !json.Valid([]byte(s)) {
		return "", fmt.Errorf("response payload is not valid JSON")
	}
	return s, nil
}

// ParseJSON cleans and unmarshals a model response into a type T.
func ParseJSON[T any](response string) (T, error) {
	var zero T
	payload, err := ExtractJSON(response)
	if err != nil {
		return zero, err
	}
	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return zero, fmt.Errorf("failed to unmarshal JSON: %w\nData: %s", err, payload)
	}
	return result, nil
}
