package executor

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agenthands/slideforge/internal/core/model"
)

const agentDocs = `replace_text(element: int, paragraph: int, text: str) - replace one paragraph of a text element
append_text(element: int, text: str) - append a paragraph to a text element
delete_paragraph(element: int, paragraph: int) - delete one paragraph of a text element
delete_element(element: int) - remove an element from the slide
replace_image(element: int, path: str) - point a picture element at a new image file`

const typographerDocs = `set_font_size(element: int, size: int) - set a text element's font size in points
delete_paragraph(element: int, paragraph: int) - delete one paragraph of a text element`

// GraphExecutor is the built-in executor operating directly on shape
// graphs. Bad element references and malformed arguments come back as
// structured failure feedback so the coder can repair its output.
type GraphExecutor struct{}

func NewGraphExecutor() *GraphExecutor { return &GraphExecutor{} }

func (e *GraphExecutor) Docs(kind APIKind) string {
	if kind == APITypographer {
		return typographerDocs
	}
	return agentDocs
}

func (e *GraphExecutor) Apply(ctx context.Context, actions []Action, graph *model.ShapeGraph) model.ExecutionResult {
	for i, action := range actions {
		if err := e.apply(action, graph); err != nil {
			return model.Failure(
				fmt.Sprintf("action %d (%s) failed: %v", i, action.Name, err),
				fmt.Sprintf("executed %d of %d actions before failure; failing action: %+v", i, len(actions), action),
			)
		}
	}
	return model.Success()
}

func (e *GraphExecutor) apply(action Action, graph *model.ShapeGraph) error {
	switch action.Name {
	case "replace_text":
		node, err := findNode(graph, action)
		if err != nil {
			return err
		}
		idx, err := intArg(action, "paragraph")
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(node.Text) {
			return fmt.Errorf("paragraph %d out of range, element %d has %d paragraphs", idx, node.Index, len(node.Text))
		}
		text, err := stringArg(action, "text")
		if err != nil {
			return err
		}
		node.Text[idx] = text

	case "append_text":
		node, err := findNode(graph, action)
		if err != nil {
			return err
		}
		text, err := stringArg(action, "text")
		if err != nil {
			return err
		}
		node.Text = append(node.Text, text)

	case "delete_paragraph":
		node, err := findNode(graph, action)
		if err != nil {
			return err
		}
		idx, err := intArg(action, "paragraph")
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(node.Text) {
			return fmt.Errorf("paragraph %d out of range, element %d has %d paragraphs", idx, node.Index, len(node.Text))
		}
		node.Text = append(node.Text[:idx], node.Text[idx+1:]...)

	case "delete_element":
		idx, err := intArg(action, "element")
		if err != nil {
			return err
		}
		if !removeNode(graph, idx) {
			return fmt.Errorf("element %d not found on slide", idx)
		}

	case "replace_image":
		node, err := findNode(graph, action)
		if err != nil {
			return err
		}
		if node.Kind != "picture" {
			return fmt.Errorf("element %d is a %s, not a picture", node.Index, node.Kind)
		}
		path, err := stringArg(action, "path")
		if err != nil {
			return err
		}
		node.Image = path

	case "set_font_size":
		node, err := findNode(graph, action)
		if err != nil {
			return err
		}
		size, err := intArg(action, "size")
		if err != nil {
			return err
		}
		if node.Style == nil {
			node.Style = map[string]string{}
		}
		node.Style["font-size"] = strconv.Itoa(size) + "pt"

	default:
		return fmt.Errorf("unknown api %q", action.Name)
	}
	return nil
}

func findNode(graph *model.ShapeGraph, action Action) (*model.ShapeNode, error) {
	idx, err := intArg(action, "element")
	if err != nil {
		return nil, err
	}
	node := graph.Find(idx)
	if node == nil {
		return nil, fmt.Errorf("element %d not found on slide", idx)
	}
	return node, nil
}

func removeNode(graph *model.ShapeGraph, index int) bool {
	var prune func(nodes []*model.ShapeNode) ([]*model.ShapeNode, bool)
	prune = func(nodes []*model.ShapeNode) ([]*model.ShapeNode, bool) {
		for i, n := range nodes {
			if n.Index == index {
				return append(nodes[:i], nodes[i+1:]...), true
			}
			if children, ok := prune(n.Children); ok {
				n.Children = children
				return nodes, true
			}
		}
		return nodes, false
	}
	pruned, ok := prune(graph.Nodes)
	if ok {
		graph.Nodes = pruned
	}
	return ok
}

func intArg(action Action, key string) (int, error) {
	v, ok := action.Args[key]
	if !ok {
		return 0, fmt.Errorf("missing argument %q", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("argument %q must be an integer, got %q", key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("argument %q must be an integer, got %T", key, v)
	}
}

func stringArg(action Action, key string) (string, error) {
	v, ok := action.Args[key]
	if !ok {
		return "", fmt.Errorf("missing argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string, got %T", key, v)
	}
	return s, nil
}
