package model

// Document is the parsed source document the presentation is built from.
type Document struct {
	Metadata map[string]string `json:"metadata"`
	Sections []Section         `json:"sections"`
}

type Section struct {
	Title       string       `json:"title"`
	Subsections []Subsection `json:"subsections,omitempty"`
}

type Subsection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}
