package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutlineUnmarshalPreservesOrder(t *testing.T) {
	raw := `{
		"Opening": {"layout": "opening", "subsection_keys": ["Abstract"], "description": "title slide"},
		"Method": {"layout": "two column", "subsection_keys": ["Approach"], "description": "the method"},
		"Results": {"layout": "chart", "subsection_keys": ["Evaluation"], "description": "numbers"}
	}`

	var o Outline
	require.NoError(t, json.Unmarshal([]byte(raw), &o))
	require.Len(t, o, 3)
	assert.Equal(t, []string{"Opening", "Method", "Results"}, o.Titles())
	assert.Equal(t, "two column", o[1].Layout)
	assert.Equal(t, []string{"Approach"}, o[1].ReferenceKeys)
}

func TestOutlineRoundTrip(t *testing.T) {
	o := Outline{
		{Title: "Z goes first", Layout: "opening", ReferenceKeys: []string{"a"}, Description: "d1"},
		{Title: "A goes second", Layout: "bullet points", ReferenceKeys: []string{"b", "c"}, Description: "d2"},
	}

	data, err := json.Marshal(o)
	require.NoError(t, err)

	var back Outline
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, o, back)
}

func TestOutlineRejectsNonObject(t *testing.T) {
	var o Outline
	assert.Error(t, json.Unmarshal([]byte(`["not", "an", "object"]`), &o))
}

func TestTemplateCloneIsDeep(t *testing.T) {
	tmpl := &Template{
		ID:     1,
		Layout: "bullet points",
		Schema: ContentSchema{{Name: "title", Type: ElementText, Data: []string{"old"}}},
		Graph: &ShapeGraph{Nodes: []*ShapeNode{
			{Index: 0, Kind: "textbox", Text: []string{"hello"}, Style: map[string]string{"font-size": "20pt"}},
			{Index: 1, Kind: "group", Children: []*ShapeNode{{Index: 2, Kind: "picture", Image: "a.png"}}},
		}},
	}

	cp := tmpl.Clone()
	cp.Schema[0].Data[0] = "new"
	cp.Graph.Nodes[0].Text[0] = "changed"
	cp.Graph.Nodes[0].Style["font-size"] = "8pt"
	cp.Graph.Nodes[1].Children[0].Image = "b.png"

	assert.Equal(t, "old", tmpl.Schema[0].Data[0])
	assert.Equal(t, "hello", tmpl.Graph.Nodes[0].Text[0])
	assert.Equal(t, "20pt", tmpl.Graph.Nodes[0].Style["font-size"])
	assert.Equal(t, "a.png", tmpl.Graph.Nodes[1].Children[0].Image)
}

func TestShapeGraphRender(t *testing.T) {
	g := &ShapeGraph{Nodes: []*ShapeNode{
		{Index: 0, Kind: "textbox", Text: []string{"Title here"}, Geometry: &Geometry{Left: 10, Top: 20, Width: 300, Height: 50}},
	}}

	plain := g.Render(RenderOptions{})
	assert.Contains(t, plain, "<textbox id=0>")
	assert.Contains(t, plain, "<p>Title here</p>")
	assert.NotContains(t, plain, "left=")

	styled := g.Render(RenderOptions{Geometry: true, Size: true})
	assert.Contains(t, styled, "left=10pt top=20pt")
	assert.Contains(t, styled, "width=300pt height=50pt")
}

func TestExecutionResult(t *testing.T) {
	assert.False(t, Success().Failed())

	f := Failure("bad element", "trace line")
	assert.True(t, f.Failed())
	assert.Equal(t, "bad element", f.Feedback)
	assert.Equal(t, "trace line", f.Trace)
}
