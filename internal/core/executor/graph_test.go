package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/slideforge/internal/core/model"
)

func slideFixture() *model.ShapeGraph {
	return &model.ShapeGraph{Nodes: []*model.ShapeNode{
		{Index: 0, Kind: "textbox", Text: []string{"Title", "Subtitle"}},
		{Index: 1, Kind: "picture", Image: "old.png"},
		{Index: 2, Kind: "group", Children: []*model.ShapeNode{
			{Index: 3, Kind: "textbox", Text: []string{"nested"}},
		}},
	}}
}

func TestApplyTextActions(t *testing.T) {
	g := slideFixture()
	e := NewGraphExecutor()

	res := e.Apply(context.Background(), []Action{
		{Name: "replace_text", Args: map[string]any{"element": float64(0), "paragraph": float64(0), "text": "New Title"}},
		{Name: "append_text", Args: map[string]any{"element": float64(0), "text": "Footer"}},
		{Name: "delete_paragraph", Args: map[string]any{"element": float64(0), "paragraph": float64(1)}},
	}, g)

	require.False(t, res.Failed(), res.Feedback)
	assert.Equal(t, []string{"New Title", "Footer"}, g.Nodes[0].Text)
}

func TestApplyReplaceImage(t *testing.T) {
	g := slideFixture()
	e := NewGraphExecutor()

	res := e.Apply(context.Background(), []Action{
		{Name: "replace_image", Args: map[string]any{"element": float64(1), "path": "new.png"}},
	}, g)
	require.False(t, res.Failed())
	assert.Equal(t, "new.png", g.Nodes[1].Image)

	// only pictures accept images
	res = e.Apply(context.Background(), []Action{
		{Name: "replace_image", Args: map[string]any{"element": float64(0), "path": "new.png"}},
	}, g)
	assert.True(t, res.Failed())
	assert.Contains(t, res.Feedback, "not a picture")
}

func TestApplyDeleteElementInGroup(t *testing.T) {
	g := slideFixture()
	e := NewGraphExecutor()

	res := e.Apply(context.Background(), []Action{
		{Name: "delete_element", Args: map[string]any{"element": float64(3)}},
	}, g)
	require.False(t, res.Failed())
	assert.Nil(t, g.Find(3))
	assert.NotNil(t, g.Find(2))
}

func TestApplySetFontSize(t *testing.T) {
	g := slideFixture()
	e := NewGraphExecutor()

	res := e.Apply(context.Background(), []Action{
		{Name: "set_font_size", Args: map[string]any{"element": float64(0), "size": float64(28)}},
	}, g)
	require.False(t, res.Failed())
	assert.Equal(t, "28pt", g.Nodes[0].Style["font-size"])
}

func TestApplyFailureFeedback(t *testing.T) {
	g := slideFixture()
	e := NewGraphExecutor()

	res := e.Apply(context.Background(), []Action{
		{Name: "append_text", Args: map[string]any{"element": float64(0), "text": "kept"}},
		{Name: "replace_text", Args: map[string]any{"element": float64(9), "paragraph": float64(0), "text": "x"}},
	}, g)

	require.True(t, res.Failed())
	assert.Contains(t, res.Feedback, "action 1 (replace_text) failed")
	assert.Contains(t, res.Feedback, "element 9 not found")
	assert.Contains(t, res.Trace, "executed 1 of 2 actions")
}

func TestApplyUnknownAPI(t *testing.T) {
	res := NewGraphExecutor().Apply(context.Background(), []Action{
		{Name: "rotate_element", Args: map[string]any{"element": float64(0)}},
	}, slideFixture())
	require.True(t, res.Failed())
	assert.Contains(t, res.Feedback, `unknown api "rotate_element"`)
}

func TestIntArgAcceptsNumericString(t *testing.T) {
	g := slideFixture()
	res := NewGraphExecutor().Apply(context.Background(), []Action{
		{Name: "delete_paragraph", Args: map[string]any{"element": "0", "paragraph": "1"}},
	}, g)
	require.False(t, res.Failed())
	assert.Equal(t, []string{"Title"}, g.Nodes[0].Text)
}

func TestParseActions(t *testing.T) {
	raw := "```json\n[{\"name\": \"replace_text\", \"args\": {\"element\": 0, \"paragraph\": 0, \"text\": \"hi\"}}]\n```"
	actions, err := ParseActions(raw)
	require.NoError(t, err)
	require.Len(t, actions, 1)
	assert.Equal(t, "replace_text", actions[0].Name)
	assert.Equal(t, "hi", actions[0].Args["text"])

	_, err = ParseActions("not actions at all")
	assert.Error(t, err)
}

func TestDocsPerKind(t *testing.T) {
	e := NewGraphExecutor()
	assert.Contains(t, e.Docs(APIAgent), "replace_image")
	assert.Contains(t, e.Docs(APITypographer), "set_font_size")
	assert.NotContains(t, e.Docs(APITypographer), "replace_image")
}
