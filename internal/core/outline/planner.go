package outline

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/slideforge/internal/core/model"
	"github.com/agenthands/slideforge/internal/core/role"
	"github.com/agenthands/slideforge/internal/core/similarity"
	"github.com/agenthands/slideforge/internal/llm"
)

// ErrOutlineExhausted is raised when the repair loop runs out of attempts.
var ErrOutlineExhausted = errors.New("failed to generate a valid outline, tried too many times")

// ValidationError describes why an outline draft was rejected. Its text and
// trace are fed back to the planning role for repair.
type ValidationError struct {
	Slide  string
	Reason string
	Trace  string
}

func (e *ValidationError) Error() string {
	if e.Slide == "" {
		return e.Reason
	}
	return fmt.Sprintf("slide %q: %s", e.Slide, e.Reason)
}

// Planner drives the outline through Draft -> Validating -> {Accepted,
// Repairing -> Validating, Failed}. Repairs are bounded by retryTimes.
type Planner struct {
	role       *role.Role
	embedder   llm.EmbedderClient
	retryTimes int
}

func NewPlanner(r *role.Role, embedder llm.EmbedderClient, retryTimes int) *Planner {
	return &Planner{role: r, embedder: embedder, retryTimes: retryTimes}
}

// Plan invokes the planning role and validates its draft against the
// template library. On acceptance every entry's layout name has been
// rewritten to the exact matched library name. Validation runs at most
// retryTimes+1 times; exceeding the budget returns ErrOutlineExhausted.
func (p *Planner) Plan(ctx context.Context, args map[string]string, layouts []string, layoutVecs [][]float32) (model.Outline, error) {
	raw, err := p.role.Invoke(ctx, args, role.InvokeOptions{})
	var draft model.Outline
	var verr *ValidationError
	if err != nil {
		var parseErr *role.ResponseParseError
		if !errors.As(err, &parseErr) {
			return nil, err
		}
		verr = &ValidationError{Reason: parseErr.Error(), Trace: parseErr.Raw}
	} else {
		draft, verr = parseDraft(raw)
	}
	for attempt := 0; ; attempt++ {
		if verr == nil {
			verr = p.validate(ctx, draft, layouts, layoutVecs)
			if verr == nil {
				return draft, nil
			}
		}
		if attempt >= p.retryTimes {
			return nil, fmt.Errorf("%w: %s", ErrOutlineExhausted, verr.Error())
		}

		raw, err := p.role.Retry(ctx, verr.Error(), verr.Trace, attempt+1)
		if err != nil {
			var parseErr *role.ResponseParseError
			if !errors.As(err, &parseErr) {
				return nil, err
			}
			verr = &ValidationError{Reason: parseErr.Error(), Trace: parseErr.Raw}
			continue
		}
		draft, verr = parseDraft(raw)
	}
}

func parseDraft(raw string) (model.Outline, *ValidationError) {
	if raw == "" {
		return nil, &ValidationError{Reason: "empty outline response"}
	}
	var draft model.Outline
	if err := draft.UnmarshalJSON([]byte(raw)); err != nil {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("invalid outline structure, must be a JSON object mapping slide titles to {layout, subsection_keys, description}: %v", err),
			Trace:  raw,
		}
	}
	if len(draft) == 0 {
		return nil, &ValidationError{Reason: "outline contains no slides", Trace: raw}
	}
	return draft, nil
}

// validate checks every entry's mandatory attributes and resolves its layout
// name against the library by embedding similarity. Matches at or above the
// threshold are normalized to the library name; anything below it rejects
// the draft.
func (p *Planner) validate(ctx context.Context, draft model.Outline, layouts []string, layoutVecs [][]float32) *ValidationError {
	for i := range draft {
		entry := &draft[i]
		if entry.Layout == "" || len(entry.ReferenceKeys) == 0 || entry.Description == "" {
			return &ValidationError{
				Slide:  entry.Title,
				Reason: "missing mandatory attributes, every slide needs layout, subsection_keys and description",
				Trace:  fmt.Sprintf("entry: %+v", *entry),
			}
		}

		vec, err := p.embedder.Embed(ctx, entry.Layout)
		if err != nil {
			return &ValidationError{
				Slide:  entry.Title,
				Reason: fmt.Sprintf("failed to embed layout name: %v", err),
			}
		}
		best, score := similarity.BestMatch(vec, layoutVecs)
		if best < 0 || !similarity.MeetsLayoutThreshold(score) {
			return &ValidationError{
				Slide:  entry.Title,
				Reason: fmt.Sprintf("layout %q not found, must be one of %v", entry.Layout, layouts),
				Trace:  fmt.Sprintf("best match %q scored %.3f, threshold %.2f", bestName(layouts, best), score, similarity.LayoutThreshold),
			}
		}
		entry.Layout = layouts[best]
	}
	return nil
}

func bestName(layouts []string, idx int) string {
	if idx < 0 || idx >= len(layouts) {
		return ""
	}
	return layouts[idx]
}
