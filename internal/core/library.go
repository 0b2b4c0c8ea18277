package core

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/agenthands/slideforge/internal/core/model"
)

// TemplateLibrary is the read-only set of pre-analyzed slide templates,
// keyed by layout name. It is supplied fully formed before orchestration
// starts and shared across all slide generations of a run.
type TemplateLibrary struct {
	names     []string
	templates map[string]*model.Template
}

func NewTemplateLibrary(templates []*model.Template) (*TemplateLibrary, error) {
	lib := &TemplateLibrary{templates: make(map[string]*model.Template, len(templates))}
	for _, t := range templates {
		if t.Layout == "" {
			return nil, fmt.Errorf("template %d has no layout name", t.ID)
		}
		if _, dup := lib.templates[t.Layout]; dup {
			return nil, fmt.Errorf("duplicate layout name %q", t.Layout)
		}
		lib.templates[t.Layout] = t
		lib.names = append(lib.names, t.Layout)
	}
	if len(lib.names) == 0 {
		return nil, fmt.Errorf("template library is empty")
	}
	sort.Strings(lib.names)
	return lib, nil
}

// LoadTemplateLibrary reads a library from a JSON file holding a list of
// templates.
func LoadTemplateLibrary(path string) (*TemplateLibrary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template library '%s': %w", path, err)
	}
	var templates []*model.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template library: %w", err)
	}
	return NewTemplateLibrary(templates)
}

// Names returns every layout name in deterministic order.
func (l *TemplateLibrary) Names() []string { return l.names }

// ContentNames returns the layouts available to content slides.
func (l *TemplateLibrary) ContentNames() []string {
	var out []string
	for _, name := range l.names {
		if !l.templates[name].Functional {
			out = append(out, name)
		}
	}
	return out
}

// FunctionalNames returns the opening/closing style layouts.
func (l *TemplateLibrary) FunctionalNames() []string {
	var out []string
	for _, name := range l.names {
		if l.templates[name].Functional {
			out = append(out, name)
		}
	}
	return out
}

// Get returns the exemplar for a layout. The caller must Clone it before
// any edit.
func (l *TemplateLibrary) Get(layout string) (*model.Template, bool) {
	t, ok := l.templates[layout]
	return t, ok
}
