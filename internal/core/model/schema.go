package model

type ElementType string

const (
	ElementText  ElementType = "text"
	ElementImage ElementType = "image"
)

// SchemaElement describes one editable element of a template.
// DefaultQuantity and SuggestedCharacters are derived before the schema is
// shown to a generative role.
type SchemaElement struct {
	Name                string      `json:"name"`
	Type                ElementType `json:"type"`
	Data                []string    `json:"data,omitempty"`
	DefaultQuantity     int         `json:"default_quantity,omitempty"`
	SuggestedCharacters string      `json:"suggested_characters,omitempty"`
}

// ContentSchema lists a template's elements. Slice order is the schema
// iteration order and, downstream, the action execution order.
type ContentSchema []SchemaElement

func (s ContentSchema) Clone() ContentSchema {
	out := make(ContentSchema, len(s))
	for i, el := range s {
		out[i] = el
		out[i].Data = append([]string(nil), el.Data...)
	}
	return out
}
