package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// OutlineEntry is the plan for one slide.
type OutlineEntry struct {
	Title         string   `json:"-"`
	Layout        string   `json:"layout"`
	ReferenceKeys []string `json:"subsection_keys"`
	Description   string   `json:"description"`
}

// Outline is the ordered per-slide plan. Its JSON form is an object keyed by
// slide title; key order is presentation order and survives a round trip.
type Outline []OutlineEntry

func (o Outline) Titles() []string {
	titles := make([]string, len(o))
	for i, e := range o {
		titles[i] = e.Title
	}
	return titles
}

func (o *Outline) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("outline must be a JSON object, got %v", tok)
	}

	var out Outline
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		title, ok := tok.(string)
		if !ok {
			return fmt.Errorf("outline key must be a string, got %v", tok)
		}
		var entry OutlineEntry
		if err := dec.Decode(&entry); err != nil {
			return fmt.Errorf("slide %q: %w", title, err)
		}
		entry.Title = title
		out = append(out, entry)
	}
	*o = out
	return nil
}

func (o Outline) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Title)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(struct {
			Layout        string   `json:"layout"`
			ReferenceKeys []string `json:"subsection_keys"`
			Description   string   `json:"description"`
		}{entry.Layout, entry.ReferenceKeys, entry.Description})
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
