package model

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/supportmesh/core"
)

// Step is one scripted model turn: text, tool calls, or a failure.
type Step struct {
	Text  string
	Calls []core.FunctionCall
	Err   error
}

// TextStep scripts a plain assistant reply.
func TextStep(text string) Step { return Step{Text: text} }

// CallStep scripts a single tool call with JSON arguments.
func CallStep(name, args string) Step {
	return Step{Calls: []core.FunctionCall{{Name: name, Arguments: args}}}
}

// ErrorStep scripts a provider failure.
func ErrorStep(err error) Step { return Step{Err: err} }

// ScriptedModel is a deterministic in‑memory Model for tests, examples and
// offline runs. Queued steps are consumed in order; once the queue is empty
// replies are looked up by the last user prompt, falling back to an echo.
type ScriptedModel struct {
	info Info

	mu        sync.Mutex
	steps     []Step
	responses map[string]string
	requests  []Request
	calls     int
}

// NewScriptedModel constructs a ScriptedModel with tool support enabled.
func NewScriptedModel(name string, steps ...Step) *ScriptedModel {
	return &ScriptedModel{
		info: Info{
			Name:          name,
			Provider:      "scripted",
			SupportsTools: true,
		},
		steps:     steps,
		responses: make(map[string]string),
	}
}

// Push appends steps to the queue.
func (m *ScriptedModel) Push(steps ...Step) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, steps...)
}

// AddResponse registers a canned completion for an input prompt.
func (m *ScriptedModel) AddResponse(prompt, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[prompt] = response
}

// Requests returns a copy of every request received so far.
func (m *ScriptedModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// Pending returns the number of queued steps not yet consumed.
func (m *ScriptedModel) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.steps)
}

// Generate implements Model.
func (m *ScriptedModel) Generate(ctx context.Context, req Request) (<-chan Response, <-chan error) {
	respCh := make(chan Response, 16)
	errCh := make(chan error, 1)

	step := m.next(req)

	go func() {
		defer close(respCh)
		defer close(errCh)

		if step.Err != nil {
			errCh <- step.Err
			return
		}

		if req.Stream && step.Text != "" {
			for _, w := range strings.SplitAfter(step.Text, " ") {
				select {
				case <-ctx.Done():
					errCh <- ctx.Err()
					return
				case respCh <- Response{
					Partial: true,
					Content: core.NewTextContent(core.RoleAssistant, w),
				}:
				}
			}
		}

		parts := make([]core.Part, 0, len(step.Calls)+1)
		if step.Text != "" {
			parts = append(parts, core.TextPart{Text: step.Text})
		}
		for _, c := range step.Calls {
			parts = append(parts, core.FunctionCallPart{FunctionCall: c})
		}

		finish := "stop"
		if len(step.Calls) > 0 {
			finish = "tool_calls"
		}

		respCh <- Response{
			Partial:      false,
			Content:      core.Content{Role: core.RoleAssistant, Parts: parts},
			FinishReason: finish,
			Usage:        &TokenUsage{PromptTokens: 1, CompletionTokens: 1, TotalTokens: 2},
		}
	}()

	return respCh, errCh
}

func (m *ScriptedModel) next(req Request) Step {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)
	m.calls++

	if len(m.steps) > 0 {
		step := m.steps[0]
		m.steps = m.steps[1:]
		for i := range step.Calls {
			if step.Calls[i].ID == "" {
				step.Calls[i].ID = fmt.Sprintf("call-%d-%d", m.calls, i)
			}
		}
		return step
	}

	prompt := lastUserText(req.Contents)
	if resp, ok := m.responses[prompt]; ok {
		return TextStep(resp)
	}

	return TextStep(fmt.Sprintf("Mock response to: %s", prompt))
}

func lastUserText(contents []core.Content) string {
	for i := len(contents) - 1; i >= 0; i-- {
		if contents[i].Role == core.RoleUser {
			return contents[i].Text()
		}
	}
	return ""
}

// Info implements Model.
func (m *ScriptedModel) Info() Info { return m.info }
