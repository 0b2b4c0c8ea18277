package config

// DefaultRoles returns the built-in prompt set for every generative role in
// the synthesis pipeline. Templates use text/template syntax; Args is the
// exact set of keys a caller must supply.
func DefaultRoles() map[string]RoleConfig {
	return map[string]RoleConfig{
		"planner": {
			UseModel:   "language",
			ReturnJSON: true,
			System: "You are a presentation planner. You turn a structured document into a " +
				"per-slide outline, choosing for every slide a layout from the given list and " +
				"the document subsections it should draw from.",
			Template: `Plan a presentation of {{.num_slides}} slides from the document below.

Available content layouts:
{{.layouts}}

Functional layouts (opening, table of contents, ending ...):
{{.functional_keys}}

Document (JSON):
{{.json_content}}

Available images:
{{.image_information}}

Output a JSON object mapping each slide title to an object with keys
"layout" (one of the layouts above), "subsection_keys" (list of document
subsection titles the slide draws from) and "description" (one sentence on
what the slide covers). Order the keys in presentation order.`,
			Args: []string{"num_slides", "layouts", "functional_keys", "json_content", "image_information"},
		},
		"editor": {
			UseModel:   "language",
			ReturnJSON: true,
			System: "You are a slide content editor. Given a slide's content schema and source " +
				"text, you produce new content for every schema element, respecting the " +
				"suggested quantity and character counts.",
			Template: `Generate new content for the slide described below.

Content schema (JSON):
{{.schema}}

Slides already covered, do not repeat their content:
{{.outline}}

Presentation metadata:
{{.metadata}}

Slide source text:
{{.text}}

Available images:
{{.images_info}}

Output a JSON object mapping each schema element name to {"data": [...]},
where data is the list of new content strings (image elements take image
paths). Omit elements that should be removed.`,
			Args: []string{"schema", "outline", "metadata", "text", "images_info"},
		},
		"coder": {
			UseModel:   "code",
			ReturnJSON: true,
			System: "You are a slide editing coder. You translate content edit commands into a " +
				"sequence of API calls against the given slide.",
			Template: `API documentation:
{{.api_docs}}

Current slide:
{{.edit_target}}

Edit commands, one per element:
{{.command_list}}

Output a JSON list of API calls, each {"name": ..., "args": {...}}, that
applies every command to the slide. Execute commands in the order given.`,
			Args: []string{"api_docs", "edit_target", "command_list"},
		},
		"typographer": {
			UseModel:   "vision",
			ReturnJSON: true,
			System: "You are a slide typographer. Looking at a rendered slide, you fix text " +
				"overflow, truncation and font sizing through the editing API.",
			Template: `API documentation:
{{.api_docs}}

Current slide with geometry:
{{.edit_target}}

A rendering of the slide is attached. Output a JSON list of API calls, each
{"name": ..., "args": {...}}, correcting any typography problem you see.
Output an empty list if the slide is fine.`,
			Args: []string{"api_docs", "edit_target"},
		},
		"agent": {
			UseModel:   "language",
			ReturnJSON: true,
			System: "You are a slide editing agent. You rewrite a template slide to present " +
				"the given content, emitting API calls directly.",
			Template: `API documentation:
{{.api_documentation}}

Current slide:
{{.edit_target}}

Content to present:
{{.content}}

Available images:
{{.image_information}}

Output a JSON list of API calls, each {"name": ..., "args": {...}}, that
rewrites the slide to present the content.`,
			Args: []string{"api_documentation", "edit_target", "content", "image_information"},
		},
	}
}

// Role returns the effective config for a role: the built-in default merged
// with any override from the config file.
func (c *Config) Role(name string) (RoleConfig, bool) {
	rc, ok := DefaultRoles()[name]
	if !ok {
		return RoleConfig{}, false
	}
	if c == nil || c.Roles == nil {
		return rc, true
	}
	if ov, ok := c.Roles[name]; ok {
		if ov.System != "" {
			rc.System = ov.System
		}
		if ov.Template != "" {
			rc.Template = ov.Template
		}
		if len(ov.Args) > 0 {
			rc.Args = ov.Args
		}
		if ov.UseModel != "" {
			rc.UseModel = ov.UseModel
		}
	}
	return rc, true
}
