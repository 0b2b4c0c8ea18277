package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agenthands/slideforge/internal/config"
	"github.com/agenthands/slideforge/internal/core/executor"
	"github.com/agenthands/slideforge/internal/core/model"
	"github.com/agenthands/slideforge/internal/core/role"
	"github.com/agenthands/slideforge/internal/llm"
)

// queueBackend records every request and answers from a fixed queue.
type queueBackend struct {
	Requests      []llm.Request
	ResponseQueue []string
}

func (m *queueBackend) Generate(ctx context.Context, req llm.Request) (string, error) {
	m.Requests = append(m.Requests, req)
	if len(m.ResponseQueue) == 0 {
		return "", errors.New("mock backend: response queue exhausted")
	}
	resp := m.ResponseQueue[0]
	m.ResponseQueue = m.ResponseQueue[1:]
	return resp, nil
}

type stubEmbedder struct {
	Vectors map[string][]float32
}

func (m *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := m.Vectors[text]; ok {
		return vec, nil
	}
	return []float32{0, 0, 1}, nil
}

// failExecutor rejects every non-empty action list.
type failExecutor struct{}

func (failExecutor) Docs(kind executor.APIKind) string { return "append_text(element, text)" }

func (failExecutor) Apply(ctx context.Context, actions []executor.Action, graph *model.ShapeGraph) model.ExecutionResult {
	return model.Failure("overflow detected", "element 0 exceeds its bounds")
}

type testBackends struct {
	planner *queueBackend
	editor  *queueBackend
	coder   *queueBackend
	agent   *queueBackend
}

func hireRole(t *testing.T, name string, backend llm.LLMClient) *role.Role {
	t.Helper()
	rc, ok := config.Default().Role(name)
	require.True(t, ok)
	r, err := role.New(role.Descriptor{
		Name:       name,
		System:     rc.System,
		Template:   rc.Template,
		Args:       rc.Args,
		ReturnJSON: rc.ReturnJSON,
	}, backend, nil, nil)
	require.NoError(t, err)
	return r
}

func buildTestRoles(t *testing.T) (*RoleSet, *testBackends) {
	t.Helper()
	backends := &testBackends{
		planner: &queueBackend{},
		editor:  &queueBackend{},
		coder:   &queueBackend{},
		agent:   &queueBackend{},
	}
	return &RoleSet{
		Planner: hireRole(t, "planner", backends.planner),
		Editor:  hireRole(t, "editor", backends.editor),
		Coder:   hireRole(t, "coder", backends.coder),
		Agent:   hireRole(t, "agent", backends.agent),
	}, backends
}

func testLibrary(t *testing.T) *TemplateLibrary {
	t.Helper()
	lib, err := NewTemplateLibrary([]*model.Template{
		{
			ID:         0,
			Layout:     "opening",
			Functional: true,
			Schema:     model.ContentSchema{{Name: "title", Type: model.ElementText, Data: []string{"Presentation Title"}}},
			Graph: &model.ShapeGraph{Nodes: []*model.ShapeNode{
				{Index: 0, Kind: "textbox", Text: []string{"Presentation Title"}},
			}},
		},
		{
			ID:     1,
			Layout: "bullet points",
			Schema: model.ContentSchema{{Name: "bullets", Type: model.ElementText, Data: []string{"one", "two"}}},
			Graph: &model.ShapeGraph{Nodes: []*model.ShapeNode{
				{Index: 0, Kind: "textbox", Text: []string{"one", "two"}},
			}},
		},
	})
	require.NoError(t, err)
	return lib
}

func testEmbedder() *stubEmbedder {
	return &stubEmbedder{Vectors: map[string][]float32{
		"opening":       {1, 0, 0},
		"bullet points": {0, 1, 0},
	}}
}

func testDocument() model.Document {
	return model.Document{
		Metadata: map[string]string{"title": "Demo Deck", "author": "QA"},
		Sections: []model.Section{{
			Title: "Body",
			Subsections: []model.Subsection{
				{Title: "Introduction", Content: "intro text"},
				{Title: "Findings", Content: "findings text"},
			},
		}},
	}
}
