package model

import (
	"encoding/json"
	"fmt"
)

// Command is the computed content delta for one schema element.
// QuantityChange is always len(NewContent) - len(OldContent).
type Command struct {
	Element        string      `json:"element"`
	Type           ElementType `json:"type"`
	QuantityChange int         `json:"quantity_change"`
	OldContent     []string    `json:"old_content"`
	NewContent     []string    `json:"new_content"`
}

// String renders the command the way the coder role sees it.
func (c Command) String() string {
	old, _ := json.Marshal(c.OldContent)
	new_, _ := json.Marshal(c.NewContent)
	return fmt.Sprintf("(%q, %q, \"quantity_change: %d\", %s, %s)",
		c.Element, c.Type, c.QuantityChange, old, new_)
}
