package model

// ExecutionResult is the outcome of applying an action list to a shape
// graph. A failure is a recoverable value, not an error: its feedback and
// trace feed the coder's repair retry.
type ExecutionResult struct {
	ok       bool
	Feedback string `json:"feedback,omitempty"`
	Trace    string `json:"trace,omitempty"`
}

func Success() ExecutionResult {
	return ExecutionResult{ok: true}
}

func Failure(feedback, trace string) ExecutionResult {
	return ExecutionResult{Feedback: feedback, Trace: trace}
}

func (r ExecutionResult) Failed() bool {
	return !r.ok
}
