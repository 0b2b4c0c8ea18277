package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agenthands/slideforge/internal/config"
	"github.com/agenthands/slideforge/internal/core"
	"github.com/agenthands/slideforge/internal/core/executor"
	"github.com/agenthands/slideforge/internal/core/model"
	"github.com/agenthands/slideforge/internal/llm"
)

type Server struct {
	cfg      *config.Config
	library  *core.TemplateLibrary
	backends core.Backends
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Printf("Warning: could not load %s: %v. Using defaults", cfgPath, err)
		cfg = config.Default()
	}
	cfg.ApplyEnv()

	ctx := context.Background()
	language, embedder, err := llm.NewClient(ctx, cfg.Language)
	if err != nil {
		log.Fatalf("Failed to initialize language model client: %v", err)
	}
	if embedder == nil {
		log.Fatalf("Language provider %q has no embedding API; layout matching needs one", cfg.Language.Provider)
	}

	code := language
	if cfg.Code.Provider != "" {
		code, _, err = llm.NewClient(ctx, cfg.Code)
		if err != nil {
			log.Fatalf("Failed to initialize code model client: %v", err)
		}
	}
	var vision llm.LLMClient
	if cfg.Vision.Provider != "" {
		vision, _, err = llm.NewClient(ctx, cfg.Vision)
		if err != nil {
			log.Fatalf("Failed to initialize vision model client: %v", err)
		}
	}

	library, err := core.LoadTemplateLibrary(cfg.Synthesis.Library)
	if err != nil {
		log.Fatalf("Failed to load template library: %v", err)
	}

	return &Server{
		cfg:     cfg,
		library: library,
		backends: core.Backends{
			Language: language,
			Code:     code,
			Vision:   vision,
			Embedder: embedder,
		},
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.POST("/synthesize", s.Synthesize)

	return r
}

type SynthesizeRequest struct {
	Document  model.Document    `json:"document"`
	Images    map[string]string `json:"images"`
	NumSlides int               `json:"num_slides"`
	RunID     string            `json:"run_id"`
	Strategy  string            `json:"strategy"`
}

func (s *Server) Synthesize(c *gin.Context) {
	var req SynthesizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.NumSlides <= 0 {
		req.NumSlides = len(s.library.ContentNames())
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.New().String()
	}
	runDir := filepath.Join(s.cfg.Synthesis.RunRoot, runID)

	roles, err := core.BuildRoles(s.cfg, s.backends)
	if err != nil {
		log.Printf("Failed to staff roles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initialize synthesis"})
		return
	}

	synth := core.NewSynthesizer(s.library, s.backends.Embedder, executor.NewGraphExecutor(), roles, core.Policy{
		RetryTimes: s.cfg.Synthesis.RetryTimes,
		ForcePages: s.cfg.Synthesis.ForcePages,
		ErrorExit:  s.cfg.Synthesis.ErrorExit,
		Typography: s.cfg.Synthesis.Typography,
	}, runDir)
	if req.Strategy == string(core.StrategyAgent) {
		synth.SetStrategy(core.StrategyAgent)
	}

	result, err := synth.GeneratePresentation(c.Request.Context(), req.Document, req.Images, req.NumSlides)
	if err != nil {
		log.Printf("Synthesis failed for run %s: %v", runID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "run_id": runID})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":  runID,
		"slides":  len(result.Slides),
		"skipped": result.Skipped,
		"outline": result.Outline,
	})
}
