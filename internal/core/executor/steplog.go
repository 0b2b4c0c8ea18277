package executor

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StepRecord is one command/action attempt against one slide.
type StepRecord struct {
	Slide    int       `json:"slide"`
	Role     string    `json:"role"`
	Attempt  int       `json:"attempt"`
	Commands []string  `json:"commands,omitempty"`
	Actions  []Action  `json:"actions"`
	Feedback string    `json:"feedback,omitempty"`
	Trace    string    `json:"trace,omitempty"`
	At       time.Time `json:"at"`
}

// StepLog is the append-only record of every attempt in one run.
type StepLog struct {
	records []StepRecord
}

func NewStepLog() *StepLog { return &StepLog{} }

func (l *StepLog) Record(rec StepRecord) {
	rec.At = time.Now().UTC()
	l.records = append(l.records, rec)
}

func (l *StepLog) Records() []StepRecord { return l.records }

// Save writes the log as jsonl, one record per line.
func (l *StepLog) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create step log: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, rec := range l.records {
		if err := enc.Encode(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}
