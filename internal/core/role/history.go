package role

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// SaveHistory writes the role's ledger to <dir>/<name>.jsonl: a token-total
// header line followed by one line per turn. When the ledger is empty and
// the file already exists the previous artifact is left untouched.
func (r *Role) SaveHistory(dir string) error {
	path := filepath.Join(dir, r.name+".jsonl")
	if len(r.history) == 0 {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("role %s: failed to create history file: %w", r.name, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	header := map[string]int{
		"input_tokens":  r.inputTokens,
		"output_tokens": r.outputTokens,
	}
	if err := enc.Encode(header); err != nil {
		return err
	}
	for _, turn := range r.history {
		if err := enc.Encode(turn); err != nil {
			return err
		}
	}
	return w.Flush()
}

// ResetHistory clears the ledger after a session save.
func (r *Role) ResetHistory() {
	r.history = nil
}
