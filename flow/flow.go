// Package flow provides execution flow management for agents.
//
// A flow runs one agent turn: it assembles a model request through pluggable
// processors, calls the model, executes any requested tools and loops until
// the model produces a final answer or the model-call budget is spent.
package flow

import (
	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

// Flow defines the interface for agent execution flows.
type Flow interface {
	// Execute runs the flow and returns a channel of events describing its
	// progress. The channel is closed when the run ends.
	Execute(runCtx *core.RunContext) (<-chan core.Event, error)
}

// FlowAgent defines the interface that agents must implement to work with flows.
type FlowAgent interface {
	// GetName returns the agent's display name.
	GetName() string

	// GetLLM returns the language model instance.
	GetLLM() model.Model

	// ResolveInstructions returns the raw (unrendered) system prompt.
	ResolveInstructions(runCtx *core.RunContext) (string, error)

	// GetTools returns the registered tools for function calling.
	GetTools() map[string]tool.Tool

	// IsStreamingEnabled returns whether streaming responses are enabled.
	IsStreamingEnabled() bool
}

// RequestProcessor processes the request before sending it to the LLM.
type RequestProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessRequest modifies the request before LLM execution.
	ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error
}

// ResponseProcessor processes the response after receiving it from the LLM.
type ResponseProcessor interface {
	// Name returns the processor's identifier.
	Name() string
	// ProcessResponse inspects or rewrites a model response chunk.
	ProcessResponse(runCtx *core.RunContext, resp *model.Response, agent FlowAgent) error
}
