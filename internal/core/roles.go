package core

import (
	"fmt"

	"github.com/agenthands/slideforge/internal/config"
	"github.com/agenthands/slideforge/internal/core/role"
	"github.com/agenthands/slideforge/internal/llm"
)

// RoleSet holds the staffed generative roles of one synthesizer.
// Typographer and Agent are optional.
type RoleSet struct {
	Planner     *role.Role
	Editor      *role.Role
	Coder       *role.Role
	Typographer *role.Role
	Agent       *role.Role
}

// Backends groups the provider clients by capability, mirroring the
// language/code/vision model split of the config.
type Backends struct {
	Language llm.LLMClient
	Code     llm.LLMClient
	Vision   llm.LLMClient
	Embedder llm.EmbedderClient
}

// BuildRoles staffs the pipeline from config: planner, editor and coder are
// always hired; the typographer only when typography is enabled and a
// vision backend exists; the agent role backs the single-agent strategy.
// Each role's backend follows its use_model setting.
func BuildRoles(cfg *config.Config, backends Backends) (*RoleSet, error) {
	pick := func(use string) (llm.LLMClient, string, error) {
		switch use {
		case "", "language":
			return backends.Language, cfg.Language.Model, nil
		case "code":
			return backends.Code, cfg.Code.Model, nil
		case "vision":
			return backends.Vision, cfg.Vision.Model, nil
		default:
			return nil, "", fmt.Errorf("unknown use_model %q", use)
		}
	}

	hire := func(name string) (*role.Role, error) {
		rc, ok := cfg.Role(name)
		if !ok {
			return nil, fmt.Errorf("unknown role %q", name)
		}
		backend, model, err := pick(rc.UseModel)
		if err != nil {
			return nil, fmt.Errorf("role %s: %w", name, err)
		}
		if backend == nil {
			return nil, fmt.Errorf("role %s: no %s backend configured", name, rc.UseModel)
		}
		var counter role.TokenCounter
		if cfg.Synthesis.RecordCost {
			counter, err = role.NewTiktokenCounter(model)
			if err != nil {
				return nil, fmt.Errorf("role %s: %w", name, err)
			}
		}
		return role.New(role.Descriptor{
			Name:       name,
			System:     rc.System,
			Template:   rc.Template,
			Args:       rc.Args,
			ReturnJSON: rc.ReturnJSON,
		}, backend, backends.Embedder, counter)
	}

	set := &RoleSet{}
	var err error
	if set.Planner, err = hire("planner"); err != nil {
		return nil, err
	}
	if set.Editor, err = hire("editor"); err != nil {
		return nil, err
	}
	if set.Coder, err = hire("coder"); err != nil {
		return nil, err
	}
	if set.Agent, err = hire("agent"); err != nil {
		return nil, err
	}
	if cfg.Synthesis.Typography && backends.Vision != nil {
		if set.Typographer, err = hire("typographer"); err != nil {
			return nil, err
		}
	}
	return set, nil
}

func (s *RoleSet) all() []*role.Role {
	roles := []*role.Role{s.Planner, s.Editor, s.Coder, s.Typographer, s.Agent}
	out := roles[:0]
	for _, r := range roles {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
