package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/agenthands/slideforge/internal/core/commands"
	"github.com/agenthands/slideforge/internal/core/executor"
	"github.com/agenthands/slideforge/internal/core/model"
	"github.com/agenthands/slideforge/internal/core/outline"
	"github.com/agenthands/slideforge/internal/core/role"
	"github.com/agenthands/slideforge/internal/core/similarity"
	"github.com/agenthands/slideforge/internal/llm"
)

const (
	outlineFile = "presentation_outline.json"
	stepsFile   = "steps.jsonl"
	historyDir  = "history"
)

// Strategy selects how a slide is synthesized: the crew pipeline
// (editor -> commands -> coder) or the single-agent shortcut.
type Strategy string

const (
	StrategyCrew  Strategy = "crew"
	StrategyAgent Strategy = "agent"
)

// Policy is the synthesis control knobs.
type Policy struct {
	RetryTimes int
	ForcePages bool
	ErrorExit  bool
	Typography bool
}

// SlideRenderer rasterizes the current slide state for the typographer's
// vision prompt. Rendering is an external concern.
type SlideRenderer interface {
	Render(ctx context.Context, graph *model.ShapeGraph) (string, error)
}

// Saver persists the assembled slide set as the final document artifact.
type Saver interface {
	Save(ctx context.Context, slides []*model.ShapeGraph, path string) error
}

// SlideResult is one successfully synthesized slide.
type SlideResult struct {
	Index  int               `json:"index"`
	Title  string            `json:"title"`
	Layout string            `json:"layout"`
	Graph  *model.ShapeGraph `json:"graph"`
}

// RunResult summarizes one document synthesis run.
type RunResult struct {
	RunDir  string         `json:"run_dir"`
	Outline model.Outline  `json:"outline"`
	Slides  []*SlideResult `json:"slides"`
	Skipped []int          `json:"skipped,omitempty"`
}

// Synthesizer coordinates outline planning, per-slide content generation,
// action execution and persistence for one run directory. Execution is
// strictly sequential: later slides condition on earlier titles.
type Synthesizer struct {
	library  *TemplateLibrary
	embedder llm.EmbedderClient
	exec     executor.ActionExecutor
	roles    *RoleSet
	policy   Policy
	strategy Strategy
	runDir   string

	renderer SlideRenderer
	saver    Saver
	checker  commands.ResourceChecker

	layoutNames []string
	layoutVecs  [][]float32
	steps       *executor.StepLog
}

func NewSynthesizer(library *TemplateLibrary, embedder llm.EmbedderClient, exec executor.ActionExecutor, roles *RoleSet, policy Policy, runDir string) *Synthesizer {
	if policy.RetryTimes <= 0 {
		policy.RetryTimes = 3
	}
	return &Synthesizer{
		library:  library,
		embedder: embedder,
		exec:     exec,
		roles:    roles,
		policy:   policy,
		strategy: StrategyCrew,
		runDir:   runDir,
		checker:  commands.FileExists,
		steps:    executor.NewStepLog(),
	}
}

// SetStrategy switches between the crew pipeline and the single-agent path.
func (s *Synthesizer) SetStrategy(strategy Strategy) { s.strategy = strategy }

// SetRenderer enables the typography refinement stage.
func (s *Synthesizer) SetRenderer(r SlideRenderer) { s.renderer = r }

// SetSaver installs the final-artifact persistence collaborator.
func (s *Synthesizer) SetSaver(sv Saver) { s.saver = sv }

// SetResourceChecker overrides how image candidates are resolved.
func (s *Synthesizer) SetResourceChecker(c commands.ResourceChecker) { s.checker = c }

// GeneratePresentation synthesizes the whole document. images maps image
// paths to captions. A run directory already holding an outline artifact
// resumes at slide generation without re-invoking the planner.
func (s *Synthesizer) GeneratePresentation(ctx context.Context, doc model.Document, images map[string]string, numSlides int) (*RunResult, error) {
	if err := os.MkdirAll(s.runDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create run dir: %w", err)
	}

	metadata := formatMetadata(doc)
	imageInfo, err := formatImageInformation(images)
	if err != nil {
		return nil, err
	}

	if err := s.embedLayouts(ctx); err != nil {
		return nil, err
	}

	plan, err := s.generateOutline(ctx, doc, numSlides, imageInfo)
	if err != nil {
		return nil, err
	}
	if s.policy.ForcePages && len(plan) > numSlides {
		plan = plan[:numSlides]
	}

	result := &RunResult{RunDir: s.runDir, Outline: plan}
	var fatal error
	for i, entry := range plan {
		covered := coveredTitles(plan, i)
		content := slideContent(doc, i, entry)
		slideImages := "No Images"
		if visualLayout(entry.Layout) {
			slideImages = imageInfo
		}

		graph, err := s.synthesizeSlide(ctx, i, entry, covered, metadata, content, slideImages)
		if err != nil {
			log.Printf("slide %d (%s) failed: %v", i+1, entry.Title, err)
			result.Skipped = append(result.Skipped, i)
			if s.policy.ErrorExit {
				fatal = err
				break
			}
			continue
		}
		result.Slides = append(result.Slides, &SlideResult{
			Index:  i,
			Title:  entry.Title,
			Layout: entry.Layout,
			Graph:  graph,
		})
	}

	if err := s.saveHistory(); err != nil {
		log.Printf("failed to persist run history: %v", err)
	}

	if fatal != nil {
		return nil, fmt.Errorf("document synthesis aborted: %w", fatal)
	}
	if s.saver != nil && len(result.Slides) > 0 {
		graphs := make([]*model.ShapeGraph, len(result.Slides))
		for i, sl := range result.Slides {
			graphs[i] = sl.Graph
		}
		if err := s.saver.Save(ctx, graphs, filepath.Join(s.runDir, "final.pptx")); err != nil {
			return nil, fmt.Errorf("failed to save final document: %w", err)
		}
	}
	return result, nil
}

func (s *Synthesizer) embedLayouts(ctx context.Context) error {
	if s.layoutVecs != nil {
		return nil
	}
	names := s.library.Names()
	vecs := make([][]float32, len(names))
	for i, name := range names {
		vec, err := s.embedder.Embed(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to embed layout %q: %w", name, err)
		}
		vecs[i] = vec
	}
	s.layoutNames = names
	s.layoutVecs = vecs
	return nil
}

// generateOutline plans the presentation, or reloads a previously accepted
// outline so a re-run resumes at slide generation.
func (s *Synthesizer) generateOutline(ctx context.Context, doc model.Document, numSlides int, imageInfo string) (model.Outline, error) {
	path := filepath.Join(s.runDir, outlineFile)
	if data, err := os.ReadFile(path); err == nil {
		var plan model.Outline
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("failed to load existing outline %s: %w", path, err)
		}
		return plan, nil
	}

	docJSON, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	planner := outline.NewPlanner(s.roles.Planner, s.embedder, s.policy.RetryTimes)
	plan, err := planner.Plan(ctx, map[string]string{
		"num_slides":        strconv.Itoa(numSlides),
		"layouts":           strings.Join(s.library.ContentNames(), "\n"),
		"functional_keys":   strings.Join(s.library.FunctionalNames(), "\n"),
		"json_content":      string(docJSON),
		"image_information": imageInfo,
	}, s.layoutNames, s.layoutVecs)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to persist outline: %w", err)
	}
	return plan, nil
}

func (s *Synthesizer) synthesizeSlide(ctx context.Context, idx int, entry model.OutlineEntry, covered, metadata, content, imageInfo string) (*model.ShapeGraph, error) {
	libTmpl, ok := s.library.Get(entry.Layout)
	if !ok {
		return nil, fmt.Errorf("layout %q not in template library", entry.Layout)
	}
	tmpl := libTmpl.Clone()

	if s.strategy == StrategyAgent && s.roles.Agent != nil {
		return s.synthesizeSlideAgent(ctx, idx, entry, tmpl, covered, metadata, content, imageInfo)
	}

	oldData := commands.PrepareSchema(tmpl.Schema)
	schemaJSON, err := json.Marshal(tmpl.Schema)
	if err != nil {
		return nil, err
	}

	editorRaw, err := s.roles.Editor.Invoke(ctx, map[string]string{
		"schema":      string(schemaJSON),
		"outline":     covered,
		"metadata":    metadata,
		"text":        content,
		"images_info": imageInfo,
	}, role.InvokeOptions{})
	if err != nil {
		return nil, err
	}
	var editorOut map[string]commands.ElementContent
	if err := json.Unmarshal([]byte(editorRaw), &editorOut); err != nil {
		return nil, &role.ResponseParseError{Role: s.roles.Editor.Name(), Raw: editorRaw, Err: err}
	}

	cmds := commands.Generate(editorOut, tmpl.Schema, oldData, s.checker)
	coderRaw, err := s.roles.Coder.Invoke(ctx, map[string]string{
		"api_docs":     s.exec.Docs(executor.APIAgent),
		"edit_target":  tmpl.Graph.Render(model.RenderOptions{}),
		"command_list": commands.Render(cmds),
	}, role.InvokeOptions{})
	if err != nil {
		return nil, err
	}

	cmdLines := make([]string, len(cmds))
	for i, c := range cmds {
		cmdLines[i] = c.String()
	}
	graph, err := s.applyWithRepair(ctx, idx, entry.Title, s.roles.Coder, coderRaw, tmpl.Graph, cmdLines)
	if err != nil {
		return nil, err
	}
	return s.refineTypography(ctx, idx, entry.Title, graph), nil
}

// synthesizeSlideAgent is the single-role strategy: one model call maps the
// rendered template plus content straight to an action list.
func (s *Synthesizer) synthesizeSlideAgent(ctx context.Context, idx int, entry model.OutlineEntry, tmpl *model.Template, covered, metadata, content, imageInfo string) (*model.ShapeGraph, error) {
	raw, err := s.roles.Agent.Invoke(ctx, map[string]string{
		"api_documentation": s.exec.Docs(executor.APIAgent),
		"edit_target":       tmpl.Graph.Render(model.RenderOptions{}),
		"content":           covered + "\n" + metadata + "\n" + content,
		"image_information": imageInfo,
	}, role.InvokeOptions{})
	if err != nil {
		return nil, err
	}
	graph, err := s.applyWithRepair(ctx, idx, entry.Title, s.roles.Agent, raw, tmpl.Graph, nil)
	if err != nil {
		return nil, err
	}
	return s.refineTypography(ctx, idx, entry.Title, graph), nil
}

// applyWithRepair runs the bounded execute-and-repair loop. Every attempt
// works on a fresh copy of the base graph so a failed apply cannot corrupt
// the starting state. After retryTimes repair invocations the slide is
// abandoned with a SlideExhaustedError.
func (s *Synthesizer) applyWithRepair(ctx context.Context, slideIdx int, title string, r *role.Role, raw string, base *model.ShapeGraph, cmdLines []string) (*model.ShapeGraph, error) {
	actions, perr := executor.ParseActions(raw)

	var feedback, trace string
	for retries := 0; ; retries++ {
		if perr == nil {
			graph := base.Clone()
			res := s.exec.Apply(ctx, actions, graph)
			s.steps.Record(executor.StepRecord{
				Slide:    slideIdx,
				Role:     r.Name(),
				Attempt:  retries,
				Commands: cmdLines,
				Actions:  actions,
				Feedback: res.Feedback,
				Trace:    res.Trace,
			})
			if !res.Failed() {
				return graph, nil
			}
			feedback, trace = res.Feedback, res.Trace
		} else {
			feedback, trace = perr.Error(), raw
			s.steps.Record(executor.StepRecord{
				Slide:    slideIdx,
				Role:     r.Name(),
				Attempt:  retries,
				Commands: cmdLines,
				Feedback: feedback,
			})
		}

		if retries == s.policy.RetryTimes {
			return nil, &SlideExhaustedError{Slide: slideIdx, Title: title, Role: r.Name(), Feedback: feedback}
		}

		var err error
		raw, err = r.Retry(ctx, feedback, trace, retries+1)
		if err != nil {
			var parseErr *role.ResponseParseError
			if !errors.As(err, &parseErr) {
				return nil, err
			}
			perr = parseErr
			continue
		}
		actions, perr = executor.ParseActions(raw)
	}
}

// refineTypography runs the optional correction stage against a rendered
// raster of the slide. Exhaustion or any rendering problem falls back to
// the pre-refinement slide; refinement never fails the slide.
func (s *Synthesizer) refineTypography(ctx context.Context, idx int, title string, graph *model.ShapeGraph) *model.ShapeGraph {
	if !s.policy.Typography || s.roles.Typographer == nil || s.renderer == nil {
		return graph
	}

	imgPath, err := s.renderer.Render(ctx, graph)
	if err != nil {
		log.Printf("slide %d: typography skipped, render failed: %v", idx+1, err)
		return graph
	}
	raw, err := s.roles.Typographer.Invoke(ctx, map[string]string{
		"api_docs":    s.exec.Docs(executor.APITypographer),
		"edit_target": graph.Render(model.RenderOptions{Geometry: true, Size: true}),
	}, role.InvokeOptions{Images: []string{imgPath}})
	if err != nil {
		log.Printf("slide %d: typography skipped: %v", idx+1, err)
		return graph
	}

	refined, err := s.applyWithRepair(ctx, idx, title, s.roles.Typographer, raw, graph, nil)
	if err != nil {
		log.Printf("slide %d: typography abandoned, keeping previous state: %v", idx+1, err)
		return graph
	}
	return refined
}

func (s *Synthesizer) saveHistory() error {
	dir := filepath.Join(s.runDir, historyDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, r := range s.roles.all() {
		if err := r.SaveHistory(dir); err != nil {
			return err
		}
		r.ResetHistory()
	}
	return s.steps.Save(filepath.Join(s.runDir, stepsFile))
}

func formatMetadata(doc model.Document) string {
	var b strings.Builder
	keys := make([]string, 0, len(doc.Metadata))
	for k := range doc.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic prompt text
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, doc.Metadata[k])
	}
	fmt.Fprintf(&b, "Current Time: %s\n", time.Now().Format("2006-01-02"))
	return b.String()
}

func formatImageInformation(images map[string]string) (string, error) {
	paths := make([]string, 0, len(images))
	for path := range images {
		paths = append(paths, path)
	}
	sort.Strings(paths) // keep planner and editor prompts identical
	var b strings.Builder
	for _, path := range paths {
		w, h, err := imageSize(path)
		if err != nil {
			return "", fmt.Errorf("image %s not found: %w", path, err)
		}
		fmt.Fprintf(&b, "Image path: %s, size: %d*%d px\n caption: %s\n", path, w, h, images[path])
	}
	return b.String(), nil
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// coveredTitles lists the titles of slides before idx as "already covered"
// context. Later titles are never included; the no-repetition contract
// depends on it.
func coveredTitles(plan model.Outline, idx int) string {
	if idx == 0 {
		return "No slides covered yet."
	}
	var b strings.Builder
	b.WriteString("Already covered slides:\n")
	for i := 0; i < idx; i++ {
		fmt.Fprintf(&b, "Slide %d: %s\n", i+1, plan[i].Title)
	}
	return b.String()
}

// slideContent assembles one slide's source text. Reference keys are
// resolved fuzzily against subsection titles; keys that match nothing
// contribute nothing.
func slideContent(doc model.Document, idx int, entry model.OutlineEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Slide-%d Title: %s\nSlide Description: %s\n", idx+1, entry.Title, entry.Description)
	for _, key := range entry.ReferenceKeys {
		for _, section := range doc.Sections {
			for _, sub := range section.Subsections {
				if similarity.Text(key, sub.Title) > similarity.TextThreshold {
					fmt.Fprintf(&b, "Slide Reference: # %s\n%s\n", key, sub.Content)
				}
			}
		}
	}
	return b.String()
}

var visualKinds = []string{"picture", "chart", "table", "diagram", "freeform"}

func visualLayout(layout string) bool {
	lower := strings.ToLower(layout)
	for _, kind := range visualKinds {
		if strings.Contains(lower, kind) {
			return true
		}
	}
	return false
}
