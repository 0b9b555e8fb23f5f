// Package gemini provides an implementation of model.Model backed by the
// native Google GenAI SDK (Gemini API backend).
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"strings"
	"sync"

	"google.golang.org/genai"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
)

// DefaultModel is the Gemini model requested when none is configured.
const DefaultModel = "gemini-1.5-flash"

// Models is the subset of the GenAI models service used by the adapter.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

type modelsWrapper struct {
	models *genai.Models
}

func (m *modelsWrapper) GenerateContent(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return m.models.GenerateContent(ctx, model, contents, config)
}

func (m *modelsWrapper) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content,
	config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return m.models.GenerateContentStream(ctx, model, contents, config)
}

// Options configure the Gemini model adapter.
type Options struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int32
}

// Model wraps the GenAI models service behind the generic model.Model
// interface. The SDK client is created on first use so construction never
// fails on missing credentials.
type Model struct {
	opts Options

	once    sync.Once
	models  Models
	initErr error
}

// NewModel creates a new Gemini model.
func NewModel(optFns ...func(o *Options)) *Model {
	opts := Options{
		Model:       DefaultModel,
		Temperature: 0.7,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Model{opts: opts}
}

// NewModelFromModels creates a Gemini model around an existing models service.
func NewModelFromModels(models Models, optFns ...func(o *Options)) *Model {
	m := NewModel(optFns...)
	m.once.Do(func() { m.models = models })
	return m
}

func (m *Model) client(ctx context.Context) (Models, error) {
	m.once.Do(func() {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  m.opts.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			m.initErr = fmt.Errorf("gemini client: %w", err)
			return
		}
		m.models = &modelsWrapper{models: client.Models}
	})
	return m.models, m.initErr
}

// Generate implements model.Model.
func (m *Model) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	out := make(chan model.Response, 32)
	errCh := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errCh)

		models, err := m.client(ctx)
		if err != nil {
			errCh <- err
			return
		}

		contents := convertContents(req.Contents)
		config := m.buildConfig(req)

		if req.Stream {
			m.handleStreaming(ctx, models, contents, config, out, errCh)
			return
		}

		rsp, err := models.GenerateContent(ctx, m.opts.Model, contents, config)
		if err != nil {
			errCh <- fmt.Errorf("gemini api error: %w", err)
			return
		}
		if len(rsp.Candidates) == 0 {
			errCh <- fmt.Errorf("no candidates returned")
			return
		}
		out <- buildResponse(rsp)
	}()

	return out, errCh
}

func (m *Model) handleStreaming(
	ctx context.Context,
	models Models,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
	out chan<- model.Response,
	errCh chan<- error,
) {
	var (
		text   strings.Builder
		calls  []core.Part
		finish string
		usage  *model.TokenUsage
		id     string
	)

	for rsp, err := range models.GenerateContentStream(ctx, m.opts.Model, contents, config) {
		if err != nil {
			errCh <- fmt.Errorf("gemini streaming error: %w", err)
			return
		}
		chunk := buildResponse(rsp)
		if chunk.ID != "" {
			id = chunk.ID
		}
		if chunk.FinishReason != "" {
			finish = chunk.FinishReason
		}
		if chunk.Usage != nil {
			usage = chunk.Usage
		}
		for _, p := range chunk.Content.Parts {
			switch part := p.(type) {
			case core.TextPart:
				text.WriteString(part.Text)
				out <- model.Response{Partial: true, Content: core.NewTextContent(core.RoleAssistant, part.Text)}
			case core.FunctionCallPart:
				calls = append(calls, part)
			}
		}
	}

	parts := make([]core.Part, 0, len(calls)+1)
	if text.Len() > 0 {
		parts = append(parts, core.TextPart{Text: text.String()})
	}
	parts = append(parts, calls...)

	out <- model.Response{
		ID:           id,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finish,
		Usage:        usage,
	}
}

func (m *Model) buildConfig(req model.Request) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(m.opts.Temperature)),
	}
	if m.opts.MaxOutputTokens > 0 {
		config.MaxOutputTokens = m.opts.MaxOutputTokens
	}

	var system []*genai.Part
	if req.Instructions != "" {
		system = append(system, &genai.Part{Text: req.Instructions})
	}
	for _, c := range req.Contents {
		if c.Role == core.RoleSystem && c.Text() != "" {
			system = append(system, &genai.Part{Text: c.Text()})
		}
	}
	if len(system) > 0 {
		config.SystemInstruction = &genai.Content{Parts: system}
	}

	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, 0, len(req.Tools))
		for _, t := range req.Tools {
			decls = append(decls, &genai.FunctionDeclaration{
				Name:                 t.Function.Name,
				Description:          t.Function.Description,
				ParametersJsonSchema: t.Function.Parameters,
			})
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
		config.ToolConfig = &genai.ToolConfig{
			FunctionCallingConfig: &genai.FunctionCallingConfig{
				Mode: genai.FunctionCallingConfigModeAuto,
			},
		}
	}

	return config
}

// convertContents maps the transcript onto GenAI contents. System contents
// travel in the config; tool responses are sent with the user role.
func convertContents(contents []core.Content) []*genai.Content {
	result := make([]*genai.Content, 0, len(contents))

	for _, c := range contents {
		var (
			parts []*genai.Part
			role  = genai.RoleUser
		)

		switch c.Role {
		case core.RoleSystem:
			continue
		case core.RoleAssistant:
			role = genai.RoleModel
		}

		for _, p := range c.Parts {
			switch part := p.(type) {
			case core.TextPart:
				if part.Text != "" {
					parts = append(parts, &genai.Part{Text: part.Text})
				}
			case core.FunctionCallPart:
				args := map[string]any{}
				if part.FunctionCall.Arguments != "" {
					_ = json.Unmarshal([]byte(part.FunctionCall.Arguments), &args)
				}
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: args,
				}})
			case core.FunctionResponsePart:
				fr := part.FunctionResponse
				response := map[string]any{"output": fr.Response}
				if fr.Error != "" {
					response = map[string]any{"error": fr.Error}
				}
				parts = append(parts, &genai.Part{FunctionResponse: &genai.FunctionResponse{
					ID:       fr.ID,
					Name:     fr.Name,
					Response: response,
				}})
			}
		}

		if len(parts) > 0 {
			result = append(result, genai.NewContentFromParts(parts, genai.Role(role)))
		}
	}

	return result
}

func buildResponse(rsp *genai.GenerateContentResponse) model.Response {
	var (
		text   strings.Builder
		calls  []core.Part
		finish string
	)

	for _, candidate := range rsp.Candidates {
		if candidate.FinishReason != "" {
			finish = string(candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" && !part.Thought {
				text.WriteString(part.Text)
			}
			if part.FunctionCall != nil {
				args, _ := json.Marshal(part.FunctionCall.Args)
				id := part.FunctionCall.ID
				if id == "" {
					id = core.NewID()
				}
				calls = append(calls, core.FunctionCallPart{FunctionCall: core.FunctionCall{
					ID:        id,
					Name:      part.FunctionCall.Name,
					Arguments: string(args),
				}})
			}
		}
	}

	parts := make([]core.Part, 0, len(calls)+1)
	if text.Len() > 0 {
		parts = append(parts, core.TextPart{Text: text.String()})
	}
	parts = append(parts, calls...)

	resp := model.Response{
		ID:           rsp.ResponseID,
		Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
		FinishReason: finish,
	}
	if u := rsp.UsageMetadata; u != nil {
		resp.Usage = &model.TokenUsage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
	}
	return resp
}

// Info implements model.Model.
func (m *Model) Info() model.Info {
	return model.Info{
		Name:          m.opts.Model,
		Provider:      "gemini",
		SupportsTools: true,
	}
}
