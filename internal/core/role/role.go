package role

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/agenthands/slideforge/internal/core/common"
	"github.com/agenthands/slideforge/internal/core/similarity"
	"github.com/agenthands/slideforge/internal/llm"
)

// ArgumentMismatchError reports a caller bug: the supplied template argument
// names do not exactly equal the role's declared set.
type ArgumentMismatchError struct {
	Role string
	Want []string
	Got  []string
}

func (e *ArgumentMismatchError) Error() string {
	return fmt.Sprintf("role %s: argument mismatch: want %v, got %v", e.Role, e.Want, e.Got)
}

// ResponseParseError reports a response that could not be parsed as
// structured output. Recoverable through Retry.
type ResponseParseError struct {
	Role string
	Raw  string
	Err  error
}

func (e *ResponseParseError) Error() string {
	return fmt.Sprintf("role %s: failed to parse structured response: %v", e.Role, e.Err)
}

func (e *ResponseParseError) Unwrap() error { return e.Err }

// Descriptor statically enumerates a role: its name, prompt set, required
// argument names and response mode.
type Descriptor struct {
	Name       string
	System     string
	Template   string
	Args       []string
	ReturnJSON bool
}

const repairInstruction = `The previous output is invalid. Carefully analyze the traceback and feedback information and correct the errors that happened before.
feedback:
%s
traceback:
%s
Give your corrected output in the same format, without repeating the previous output.`

// Role is a named, templated request unit bound to a generative backend.
// It owns an append-only ledger of every exchange it has made.
type Role struct {
	name         string
	system       string
	tmpl         *template.Template
	requiredArgs map[string]struct{}
	returnJSON   bool

	backend  llm.LLMClient
	embedder llm.EmbedderClient

	recordCost   bool
	counter      TokenCounter
	systemTokens int
	inputTokens  int
	outputTokens int

	history []*Turn
}

// New builds a Role from its descriptor. counter may be nil when cost
// recording is off; embedder may be nil when similarity recall is unused.
func New(desc Descriptor, backend llm.LLMClient, embedder llm.EmbedderClient, counter TokenCounter) (*Role, error) {
	tmpl, err := template.New(desc.Name).Option("missingkey=error").Parse(desc.Template)
	if err != nil {
		return nil, fmt.Errorf("role %s: bad prompt template: %w", desc.Name, err)
	}
	required := make(map[string]struct{}, len(desc.Args))
	for _, a := range desc.Args {
		required[a] = struct{}{}
	}
	r := &Role{
		name:         desc.Name,
		system:       desc.System,
		tmpl:         tmpl,
		requiredArgs: required,
		returnJSON:   desc.ReturnJSON,
		backend:      backend,
		embedder:     embedder,
		recordCost:   counter != nil,
		counter:      counter,
	}
	if r.recordCost {
		r.systemTokens = counter.Count(desc.System)
	}
	return r, nil
}

func (r *Role) Name() string { return r.name }

// History returns the role's turn ledger in call order.
func (r *Role) History() []*Turn { return r.history }

// Tokens returns the accumulated input and output token counts.
func (r *Role) Tokens() (int, int) { return r.inputTokens, r.outputTokens }

// InvokeOptions tunes one invocation. Recent and Similar select
// conditioning history; Images attach media to the prompt.
type InvokeOptions struct {
	Recent  int
	Similar int
	Images  []string
}

// Invoke renders the role's template with args and calls the backend. The
// supplied argument names must exactly equal the declared set. A new Turn
// is appended to the ledger regardless of parse outcome.
func (r *Role) Invoke(ctx context.Context, args map[string]string, opts InvokeOptions) (string, error) {
	if err := r.checkArgs(args); err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := r.tmpl.Execute(&sb, args); err != nil {
		return "", fmt.Errorf("role %s: failed to render prompt: %w", r.name, err)
	}
	prompt := sb.String()

	conditioning, err := r.conditioningHistory(ctx, prompt, opts.Recent, opts.Similar)
	if err != nil {
		return "", err
	}
	var historyMsgs []llm.Message
	for _, turn := range conditioning {
		historyMsgs = append(historyMsgs, turn.Transcript...)
	}

	response, err := r.backend.Generate(ctx, llm.Request{
		System:  r.system,
		History: historyMsgs,
		Prompt:  prompt,
		Images:  opts.Images,
	})
	if err != nil {
		return "", fmt.Errorf("role %s: backend: %w", r.name, err)
	}

	turn := &Turn{
		ID:       len(r.history),
		Prompt:   prompt,
		Response: response,
		Transcript: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
			{Role: llm.RoleAssistant, Content: response},
		},
		Images: opts.Images,
	}
	return r.postProcess(ctx, turn, conditioning, opts.Similar > 0)
}

// Retry replays the transcript of the last attemptsBack turns and asks the
// backend to correct its output given feedback and an error trace. It does
// not re-run the original prompt. attemptsBack must be positive.
func (r *Role) Retry(ctx context.Context, feedback, trace string, attemptsBack int) (string, error) {
	if attemptsBack <= 0 {
		return "", fmt.Errorf("role %s: retry requires attemptsBack > 0, got %d", r.name, attemptsBack)
	}
	if attemptsBack > len(r.history) {
		attemptsBack = len(r.history)
	}

	prompt := fmt.Sprintf(repairInstruction, feedback, trace)
	replayed := r.history[len(r.history)-attemptsBack:]
	var historyMsgs []llm.Message
	for _, turn := range replayed {
		historyMsgs = append(historyMsgs, turn.Transcript...)
	}

	response, err := r.backend.Generate(ctx, llm.Request{
		History: historyMsgs,
		Prompt:  prompt,
	})
	if err != nil {
		return "", fmt.Errorf("role %s: backend: %w", r.name, err)
	}

	turn := &Turn{
		ID:       len(r.history),
		Prompt:   prompt,
		Response: response,
		Transcript: []llm.Message{
			{Role: llm.RoleUser, Content: prompt},
			{Role: llm.RoleAssistant, Content: response},
		},
	}
	return r.postProcess(ctx, turn, replayed, false)
}

func (r *Role) checkArgs(args map[string]string) error {
	mismatch := len(args) != len(r.requiredArgs)
	if !mismatch {
		for k := range args {
			if _, ok := r.requiredArgs[k]; !ok {
				mismatch = true
				break
			}
		}
	}
	if !mismatch {
		return nil
	}
	want := make([]string, 0, len(r.requiredArgs))
	for k := range r.requiredArgs {
		want = append(want, k)
	}
	got := make([]string, 0, len(args))
	for k := range args {
		got = append(got, k)
	}
	sort.Strings(want)
	sort.Strings(got)
	return &ArgumentMismatchError{Role: r.name, Want: want, Got: got}
}

// conditioningHistory merges the most recent turns with the most similar
// ones: collect the recent set, rank the rest by embedding similarity to
// the prompt, deduplicate by turn identity, cap at recent+similar, then
// sort back into call order.
func (r *Role) conditioningHistory(ctx context.Context, prompt string, recent, similar int) ([]*Turn, error) {
	var selected []*Turn
	if recent > 0 {
		start := len(r.history) - recent
		if start < 0 {
			start = 0
		}
		selected = append(selected, r.history[start:]...)
	}

	if similar > 0 {
		if r.embedder == nil {
			return nil, fmt.Errorf("role %s: similarity recall requested without an embedder", r.name)
		}
		queryVec, err := r.embedder.Embed(ctx, prompt)
		if err != nil {
			return nil, fmt.Errorf("role %s: failed to embed prompt: %w", r.name, err)
		}
		candidates := make([]*Turn, 0, len(r.history))
		for _, turn := range r.history {
			if turn.embedding != nil {
				candidates = append(candidates, turn)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			return similarity.Cosine(queryVec, candidates[i].embedding) >
				similarity.Cosine(queryVec, candidates[j].embedding)
		})
		for _, turn := range candidates {
			if len(selected) >= recent+similar {
				break
			}
			if !containsTurn(selected, turn) {
				selected = append(selected, turn)
			}
		}
	}

	sort.Slice(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })
	return selected, nil
}

func containsTurn(turns []*Turn, t *Turn) bool {
	for _, other := range turns {
		if other == t {
			return true
		}
	}
	return false
}

func (r *Role) postProcess(ctx context.Context, turn *Turn, conditioning []*Turn, embed bool) (string, error) {
	r.history = append(r.history, turn)

	if r.recordCost {
		if err := turn.CalcTokens(r.counter); err != nil {
			return "", fmt.Errorf("role %s: %w", r.name, err)
		}
		for _, t := range conditioning {
			r.inputTokens += t.InputTokens
			r.outputTokens += t.OutputTokens
		}
		r.inputTokens += turn.InputTokens + r.systemTokens
		// every reply is primed with <|start|>assistant<|message|>
		r.outputTokens += turn.OutputTokens + 3
	}

	if embed {
		vec, err := r.embedder.Embed(ctx, turn.Prompt)
		if err != nil {
			return "", fmt.Errorf("role %s: failed to embed turn: %w", r.name, err)
		}
		turn.embedding = vec
	}

	if r.returnJSON {
		payload, err := common.ExtractJSON(turn.Response)
		if err != nil {
			return "", &ResponseParseError{Role: r.name, Raw: turn.Response, Err: err}
		}
		return payload, nil
	}
	return turn.Response, nil
}
