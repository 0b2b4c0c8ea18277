package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agenthands/slideforge/internal/core/model"
)

// ElementContent is one element's entry in the editor role's output.
// Models sometimes emit a bare string where a list is expected; both forms
// are accepted and null members are dropped.
type ElementContent struct {
	Data []string
}

func (e *ElementContent) UnmarshalJSON(data []byte) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	if len(wrapper.Data) == 0 {
		return nil
	}

	var list []*string
	if err := json.Unmarshal(wrapper.Data, &list); err == nil {
		for _, s := range list {
			if s != nil && *s != "" {
				e.Data = append(e.Data, *s)
			}
		}
		return nil
	}

	var single string
	if err := json.Unmarshal(wrapper.Data, &single); err != nil {
		return fmt.Errorf("element data must be a string or list of strings")
	}
	if single != "" {
		e.Data = []string{single}
	}
	return nil
}

// ResourceChecker reports whether an image candidate resolves to an
// existing addressable resource.
type ResourceChecker func(path string) bool

// FileExists is the default checker, backed by the local filesystem.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// PrepareSchema derives each element's cardinality and size hints in place
// and strips out the prior example data, returning it keyed by element
// name. Every element ends up with a cardinality decision (default 1).
func PrepareSchema(schema model.ContentSchema) map[string][]string {
	old := make(map[string][]string, len(schema))
	for i := range schema {
		el := &schema[i]
		if el.Type == model.ElementText && len(el.Data) > 0 {
			shortest, longest := len(el.Data[0]), len(el.Data[0])
			for _, s := range el.Data[1:] {
				if len(s) < shortest {
					shortest = len(s)
				}
				if len(s) > longest {
					longest = len(s)
				}
			}
			if len(el.Data) > 1 {
				el.SuggestedCharacters = fmt.Sprintf("%d-%d", shortest, longest)
			} else {
				el.SuggestedCharacters = fmt.Sprintf("<%d", longest)
			}
		}
		el.DefaultQuantity = 1
		if len(el.Data) > 1 {
			el.DefaultQuantity = len(el.Data)
		}
		old[el.Name] = el.Data
		el.Data = nil
	}
	return old
}

// Generate diffs the editor output against the template's old content into
// a command list, in schema iteration order. Elements absent from the
// output become full removals. Image candidates that do not resolve to an
// existing resource are dropped before the delta is computed.
func Generate(editorOut map[string]ElementContent, schema model.ContentSchema, old map[string][]string, exists ResourceChecker) []model.Command {
	if exists == nil {
		exists = FileExists
	}

	cmds := make([]model.Command, 0, len(schema))
	for _, el := range schema {
		oldContent := old[el.Name]
		newContent := append([]string(nil), editorOut[el.Name].Data...)

		if el.Type == model.ElementImage {
			kept := newContent[:0]
			for _, candidate := range newContent {
				if exists(candidate) {
					kept = append(kept, candidate)
				}
			}
			newContent = kept
		}

		cmds = append(cmds, model.Command{
			Element:        el.Name,
			Type:           el.Type,
			QuantityChange: len(newContent) - len(oldContent),
			OldContent:     oldContent,
			NewContent:     newContent,
		})
	}
	return cmds
}

// Render formats a command list for the coder prompt, one command per line.
func Render(cmds []model.Command) string {
	out := ""
	for i, c := range cmds {
		if i > 0 {
			out += "\n"
		}
		out += c.String()
	}
	return out
}
