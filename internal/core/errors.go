package core

import (
	"fmt"
)

// SlideExhaustedError reports that one slide's repair loop ran out of
// attempts. Whether it aborts the document depends on the error policy.
type SlideExhaustedError struct {
	Slide    int
	Title    string
	Role     string
	Feedback string
}

func (e *SlideExhaustedError) Error() string {
	return fmt.Sprintf("slide %d (%s): %s repair budget exhausted, last feedback: %s",
		e.Slide+1, e.Title, e.Role, e.Feedback)
}
