package model

import (
	"fmt"
	"sort"
	"strings"
)

// Template is one exemplar slide: its shape graph plus the derived content
// schema. Templates are owned by the library and never edited in place;
// every generation stage works on a Clone.
type Template struct {
	ID         int           `json:"template_id"`
	Layout     string        `json:"layout"`
	Functional bool          `json:"functional,omitempty"`
	Schema     ContentSchema `json:"content_schema"`
	Graph      *ShapeGraph   `json:"shape_graph"`
}

func (t *Template) Clone() *Template {
	cp := *t
	cp.Schema = t.Schema.Clone()
	cp.Graph = t.Graph.Clone()
	return &cp
}

// Geometry is a shape's bounding box in points.
type Geometry struct {
	Left   int `json:"left"`
	Top    int `json:"top"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ShapeNode is one visual element of a slide.
type ShapeNode struct {
	Index    int               `json:"index"`
	Kind     string            `json:"kind"` // textbox, picture, table, group, ...
	Text     []string          `json:"text,omitempty"`
	Image    string            `json:"image,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
	Geometry *Geometry         `json:"geometry,omitempty"`
	Children []*ShapeNode      `json:"children,omitempty"`
}

func (n *ShapeNode) Clone() *ShapeNode {
	cp := *n
	cp.Text = append([]string(nil), n.Text...)
	if n.Style != nil {
		cp.Style = make(map[string]string, len(n.Style))
		for k, v := range n.Style {
			cp.Style[k] = v
		}
	}
	if n.Geometry != nil {
		g := *n.Geometry
		cp.Geometry = &g
	}
	cp.Children = make([]*ShapeNode, len(n.Children))
	for i, c := range n.Children {
		cp.Children[i] = c.Clone()
	}
	if len(cp.Children) == 0 {
		cp.Children = nil
	}
	return &cp
}

// ShapeGraph is the structural representation of one slide.
type ShapeGraph struct {
	Nodes []*ShapeNode `json:"nodes"`
}

func (g *ShapeGraph) Clone() *ShapeGraph {
	cp := &ShapeGraph{Nodes: make([]*ShapeNode, len(g.Nodes))}
	for i, n := range g.Nodes {
		cp.Nodes[i] = n.Clone()
	}
	return cp
}

// Find returns the node with the given index, searching groups recursively.
func (g *ShapeGraph) Find(index int) *ShapeNode {
	var walk func(nodes []*ShapeNode) *ShapeNode
	walk = func(nodes []*ShapeNode) *ShapeNode {
		for _, n := range nodes {
			if n.Index == index {
				return n
			}
			if found := walk(n.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(g.Nodes)
}

// RenderOptions controls how much styling detail Render includes. The coder
// sees the plain structural view; the typographer gets geometry and sizes.
type RenderOptions struct {
	Geometry bool
	Size     bool
}

// Render produces the HTML-like structural view used as the edit target in
// coder and typographer prompts.
func (g *ShapeGraph) Render(opts RenderOptions) string {
	var b strings.Builder
	b.WriteString("<slide>\n")
	for _, n := range g.Nodes {
		renderNode(&b, n, opts, 1)
	}
	b.WriteString("</slide>")
	return b.String()
}

func renderNode(b *strings.Builder, n *ShapeNode, opts RenderOptions, depth int) {
	indent := strings.Repeat("  ", depth)
	var attrs []string
	attrs = append(attrs, fmt.Sprintf("id=%d", n.Index))
	if opts.Geometry && n.Geometry != nil {
		attrs = append(attrs, fmt.Sprintf("left=%dpt top=%dpt", n.Geometry.Left, n.Geometry.Top))
	}
	if opts.Size && n.Geometry != nil {
		attrs = append(attrs, fmt.Sprintf("width=%dpt height=%dpt", n.Geometry.Width, n.Geometry.Height))
	}
	if style := renderStyle(n.Style); style != "" {
		attrs = append(attrs, fmt.Sprintf("style=%q", style))
	}
	if n.Image != "" {
		attrs = append(attrs, fmt.Sprintf("src=%q", n.Image))
	}
	fmt.Fprintf(b, "%s<%s %s>\n", indent, n.Kind, strings.Join(attrs, " "))
	for _, line := range n.Text {
		fmt.Fprintf(b, "%s  <p>%s</p>\n", indent, line)
	}
	for _, c := range n.Children {
		renderNode(b, c, opts, depth+1)
	}
	fmt.Fprintf(b, "%s</%s>\n", indent, n.Kind)
}

func renderStyle(style map[string]string) string {
	if len(style) == 0 {
		return ""
	}
	// deterministic order for stable prompts
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+style[k])
	}
	return strings.Join(parts, "; ")
}
