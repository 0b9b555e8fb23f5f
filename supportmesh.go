// Package supportmesh wires the support desk together: it builds the model
// adapter selected by the configuration, the agent catalog, the runner and
// console sessions.
//
// Most applications interact with this package by:
//  1. Loading a config.Config (or using config.DefaultConfig)
//  2. Creating a SupportMesh via New, optionally injecting a model
//  3. Starting a console session (NewSession) or asking a single agent (Ask)
package supportmesh

import (
	"context"
	"fmt"
	"io"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/desk"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	anthropicmodel "github.com/hupe1980/supportmesh/model/anthropic"
	"github.com/hupe1980/supportmesh/model/gemini"
	"github.com/hupe1980/supportmesh/model/openai"
	"github.com/hupe1980/supportmesh/runner"
	"github.com/hupe1980/supportmesh/support"
)

// Options configures the SupportMesh instance.
type Options struct {
	// Config holds the desk settings (defaults to config.DefaultConfig).
	Config *config.Config
	// Model replaces the provider adapter built from Config.
	Model model.Model
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// SupportMesh is the high-level façade aggregating the model, the agent
// catalog and the runner.
type SupportMesh struct {
	cfg     *config.Config
	llm     model.Model
	catalog *support.Catalog
	runner  *runner.Runner
	logger  logging.Logger
}

// New creates a SupportMesh. The model adapter is built from the
// configuration unless one is injected.
func New(optFns ...func(o *Options)) (*SupportMesh, error) {
	opts := Options{
		Config: config.DefaultConfig(),
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if err := opts.Config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	llm := opts.Model
	if llm == nil {
		var err error
		if llm, err = NewModel(opts.Config); err != nil {
			return nil, err
		}
	}

	cfg := opts.Config

	catalog := support.NewCatalog(llm, func(o *support.CatalogOptions) {
		o.EnableStreaming = cfg.Stream
	})

	r := runner.New(func(o *runner.Options) {
		o.MaxModelCalls = cfg.MaxModelCalls
		o.Logger = opts.Logger
	})

	opts.Logger.Debug(
		"supportmesh.init",
		"provider", llm.Info().Provider,
		"model", llm.Info().Name,
		"stream", cfg.Stream,
		"max_model_calls", cfg.MaxModelCalls,
	)

	return &SupportMesh{
		cfg:     cfg,
		llm:     llm,
		catalog: catalog,
		runner:  r,
		logger:  opts.Logger,
	}, nil
}

// NewModel builds the model adapter selected by cfg.Provider. No network
// call is made; a missing API key surfaces on the first request.
func NewModel(cfg *config.Config) (model.Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	switch cfg.Provider {
	case config.ProviderOpenAI:
		return openai.NewModel(func(o *openai.Options) {
			o.APIKey = cfg.APIKey
			if cfg.BaseURL != "" {
				o.BaseURL = cfg.BaseURL
			}
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
		}), nil
	case config.ProviderGemini:
		return gemini.NewModel(func(o *gemini.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			o.Temperature = cfg.Temperature
			o.MaxOutputTokens = int32(cfg.MaxTokens)
		}), nil
	case config.ProviderAnthropic:
		return anthropicmodel.NewModel(func(o *anthropicmodel.Options) {
			o.APIKey = cfg.APIKey
			if cfg.Model != "" {
				o.Model = anthropic.Model(cfg.Model)
			}
			o.Temperature = cfg.Temperature
			if cfg.MaxTokens > 0 {
				o.MaxTokens = int64(cfg.MaxTokens)
			}
		}), nil
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrUnknownProvider, cfg.Provider)
	}
}

// Model returns the shared model.
func (m *SupportMesh) Model() model.Model { return m.llm }

// Catalog returns the agent definitions.
func (m *SupportMesh) Catalog() *support.Catalog { return m.catalog }

// Runner returns the underlying runner.
func (m *SupportMesh) Runner() *runner.Runner { return m.runner }

// NewSession creates a console session reading from in and writing to out.
// Options from the configuration are applied before optFns.
func (m *SupportMesh) NewSession(in io.Reader, out io.Writer, optFns ...func(o *desk.Options)) (*desk.Session, error) {
	policy, err := desk.ParsePolicy(m.cfg.Guardrail.Policy)
	if err != nil {
		return nil, err
	}

	fns := append([]func(o *desk.Options){func(o *desk.Options) {
		o.Policy = policy
		o.MaxRetries = m.cfg.Guardrail.MaxRetries
		o.FailFast = m.cfg.FailFast
		o.RequestTimeout = m.cfg.RequestTimeout
		o.Logger = m.logger
	}}, optFns...)

	return desk.New(m.catalog, m.runner, in, out, fns...)
}

// Ask runs a single query against one agent and returns the run result.
func (m *SupportMesh) Ask(
	ctx context.Context,
	id support.AgentID,
	query string,
	sc *core.SupportContext,
) (*runner.Result, error) {
	a := m.catalog.Agent(id)
	if a == nil {
		return nil, fmt.Errorf("%w: %s", desk.ErrUnknownAgent, id)
	}
	return m.runner.Run(ctx, a, query, sc)
}
