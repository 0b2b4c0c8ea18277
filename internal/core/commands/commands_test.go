package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/slideforge/internal/core/model"
)

func TestElementContentUnmarshal(t *testing.T) {
	var list ElementContent
	require.NoError(t, json.Unmarshal([]byte(`{"data": ["a", null, "", "b"]}`), &list))
	assert.Equal(t, []string{"a", "b"}, list.Data)

	var single ElementContent
	require.NoError(t, json.Unmarshal([]byte(`{"data": "just one"}`), &single))
	assert.Equal(t, []string{"just one"}, single.Data)

	var empty ElementContent
	require.NoError(t, json.Unmarshal([]byte(`{}`), &empty))
	assert.Nil(t, empty.Data)

	var bad ElementContent
	assert.Error(t, json.Unmarshal([]byte(`{"data": 42}`), &bad))
}

func TestPrepareSchema(t *testing.T) {
	schema := model.ContentSchema{
		{Name: "bullets", Type: model.ElementText, Data: []string{"short", "a much longer bullet"}},
		{Name: "title", Type: model.ElementText, Data: []string{"Only Title"}},
		{Name: "logo", Type: model.ElementImage, Data: []string{"logo.png"}},
	}

	old := PrepareSchema(schema)

	assert.Equal(t, "5-20", schema[0].SuggestedCharacters)
	assert.Equal(t, 2, schema[0].DefaultQuantity)
	assert.Equal(t, "<10", schema[1].SuggestedCharacters)
	assert.Equal(t, 1, schema[1].DefaultQuantity)
	assert.Empty(t, schema[2].SuggestedCharacters)
	assert.Equal(t, 1, schema[2].DefaultQuantity)

	for i := range schema {
		assert.Nil(t, schema[i].Data, "example data must be stripped")
	}
	assert.Equal(t, []string{"short", "a much longer bullet"}, old["bullets"])
	assert.Equal(t, []string{"logo.png"}, old["logo"])
}

func TestGenerateQuantityChange(t *testing.T) {
	schema := model.ContentSchema{{Name: "bullets", Type: model.ElementText}}
	old := map[string][]string{"bullets": {"a", "b"}}
	out := map[string]ElementContent{"bullets": {Data: []string{"a", "b", "c"}}}

	cmds := Generate(out, schema, old, func(string) bool { return true })
	require.Len(t, cmds, 1)
	assert.Equal(t, 1, cmds[0].QuantityChange)
	assert.Equal(t, []string{"a", "b"}, cmds[0].OldContent)
	assert.Equal(t, []string{"a", "b", "c"}, cmds[0].NewContent)
}

func TestGenerateMissingElementBecomesRemoval(t *testing.T) {
	schema := model.ContentSchema{
		{Name: "title", Type: model.ElementText},
		{Name: "footer", Type: model.ElementText},
	}
	old := map[string][]string{"title": {"Old Title"}, "footer": {"page 1"}}
	out := map[string]ElementContent{"title": {Data: []string{"New Title"}}}

	cmds := Generate(out, schema, old, func(string) bool { return true })
	require.Len(t, cmds, 2)
	assert.Equal(t, 0, cmds[0].QuantityChange)

	removal := cmds[1]
	assert.Equal(t, "footer", removal.Element)
	assert.Equal(t, -1, removal.QuantityChange)
	assert.Empty(t, removal.NewContent)
}

func TestGenerateFiltersMissingImages(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "chart.png")
	require.NoError(t, os.WriteFile(existing, []byte("png"), 0o644))

	schema := model.ContentSchema{{Name: "figure", Type: model.ElementImage}}
	old := map[string][]string{"figure": {"placeholder.png"}}
	out := map[string]ElementContent{"figure": {Data: []string{existing, filepath.Join(dir, "nope.png")}}}

	cmds := Generate(out, schema, old, FileExists)
	require.Len(t, cmds, 1)
	assert.Equal(t, []string{existing}, cmds[0].NewContent)
	assert.Equal(t, 0, cmds[0].QuantityChange)
}

func TestGenerateFollowsSchemaOrder(t *testing.T) {
	schema := model.ContentSchema{
		{Name: "z", Type: model.ElementText},
		{Name: "a", Type: model.ElementText},
		{Name: "m", Type: model.ElementText},
	}
	cmds := Generate(nil, schema, map[string][]string{}, func(string) bool { return true })
	require.Len(t, cmds, 3)
	assert.Equal(t, "z", cmds[0].Element)
	assert.Equal(t, "a", cmds[1].Element)
	assert.Equal(t, "m", cmds[2].Element)
}

func TestRender(t *testing.T) {
	cmds := []model.Command{
		{Element: "title", Type: model.ElementText, QuantityChange: 0, OldContent: []string{"Old"}, NewContent: []string{"New"}},
		{Element: "figure", Type: model.ElementImage, QuantityChange: -1, OldContent: []string{"x.png"}},
	}
	rendered := Render(cmds)
	lines := 1
	for _, c := range rendered {
		if c == '\n' {
			lines++
		}
	}
	assert.Equal(t, 2, lines)
	assert.Contains(t, rendered, `"title"`)
	assert.Contains(t, rendered, "quantity_change: -1")
}
