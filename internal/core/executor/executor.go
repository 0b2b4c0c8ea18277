package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agenthands/slideforge/internal/core/common"
	"github.com/agenthands/slideforge/internal/core/model"
)

// Action is one executor-specific edit operation. The orchestrator treats
// actions as opaque; only the executor interprets them.
type Action struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// APIKind selects which slice of the editing API a role is shown.
type APIKind string

const (
	APIAgent       APIKind = "agent"
	APITypographer APIKind = "typographer"
)

// ActionExecutor applies generated actions to a slide's shape graph. A
// failed apply returns structured feedback suitable for a repair retry,
// never a Go error.
type ActionExecutor interface {
	Docs(kind APIKind) string
	Apply(ctx context.Context, actions []Action, graph *model.ShapeGraph) model.ExecutionResult
}

// ParseActions decodes a coder/typographer response into an action list.
func ParseActions(raw string) ([]Action, error) {
	payload, err := common.ExtractJSON(raw)
	if err != nil {
		return nil, err
	}
	var actions []Action
	if err := json.Unmarshal([]byte(payload), &actions); err != nil {
		return nil, fmt.Errorf("failed to decode action list: %w", err)
	}
	return actions, nil
}
