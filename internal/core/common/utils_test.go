package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractJSONFenced(t *testing.T) {
	raw := "Here is the plan:\n```json\n{\"a\": 1}\n```\nLet me know."
	payload, err := ExtractJSON(raw)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a": 1}`, payload)
}

func TestExtractJSONBareObjectWithProse(t *testing.T) {
	payload, err := ExtractJSON(`Sure! {"layout": "bullet points"} hope that helps`)
	assert.NoError(t, err)
	assert.JSONEq(t, `{"layout": "bullet points"}`, payload)
}

func TestExtractJSONArray(t *testing.T) {
	payload, err := ExtractJSON(`[{"name": "replace_text"}]`)
	assert.NoError(t, err)
	assert.JSONEq(t, `[{"name": "replace_text"}]`, payload)
}

func TestExtractJSONInvalid(t *testing.T) {
	_, err := ExtractJSON("no structured data here")
	assert.Error(t, err)

	_, err = ExtractJSON(`{"broken": `)
	assert.Error(t, err)
}

func TestParseJSON(t *testing.T) {
	type out struct {
		Name string `json:"name"`
	}
	v, err := ParseJSON[out]("```json\n{\"name\": \"editor\"}\n```")
	assert.NoError(t, err)
	assert.Equal(t, "editor", v.Name)
}
