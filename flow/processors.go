package flow

import (
	"fmt"
	"sort"

	"github.com/hupe1980/supportmesh/core"
	internalutil "github.com/hupe1980/supportmesh/internal/util"
	"github.com/hupe1980/supportmesh/model"
)

// InstructionsProcessor renders the agent's system prompt against the
// session's SupportContext.
type InstructionsProcessor struct{}

// NewInstructionsProcessor creates a new instructions processor.
func NewInstructionsProcessor() *InstructionsProcessor { return &InstructionsProcessor{} }

// Name returns the processor's identifier.
func (p *InstructionsProcessor) Name() string { return "instructions" }

// ProcessRequest sets the rendered system instructions on the request.
func (p *InstructionsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent FlowAgent) error {
	instructions, err := agent.ResolveInstructions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to resolve instruction: %w", err)
	}

	rendered, err := internalutil.RenderTemplate(instructions, runCtx.Support.State())
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}

	runCtx.LogDebug("agent.instruction.resolved", "agent", agent.GetName(), "length", len(rendered))

	req.Instructions = rendered

	return nil
}

// ContentsProcessor copies the in-run transcript into the request.
type ContentsProcessor struct{}

// NewContentsProcessor creates a new contents processor.
func NewContentsProcessor() *ContentsProcessor { return &ContentsProcessor{} }

// Name returns the processor's identifier.
func (p *ContentsProcessor) Name() string { return "contents" }

// ProcessRequest adds the query and any tool traffic of this run.
func (p *ContentsProcessor) ProcessRequest(runCtx *core.RunContext, req *model.Request, _ FlowAgent) error {
	req.Contents = runCtx.Transcript()
	return nil
}

// ToolsProcessor declares the agent's tools, sorted by name.
type ToolsProcessor struct{}

// NewToolsProcessor creates a new tools processor.
func NewToolsProcessor() *ToolsProcessor { return &ToolsProcessor{} }

// Name returns the processor's identifier.
func (p *ToolsProcessor) Name() string { return "tools" }

// ProcessRequest adds tool definitions to the request.
func (p *ToolsProcessor) ProcessRequest(_ *core.RunContext, req *model.Request, agent FlowAgent) error {
	tools := agent.GetTools()
	if len(tools) == 0 {
		return nil
	}

	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}
	sort.Strings(names)

	defs := make([]model.ToolDefinition, 0, len(names))
	for _, name := range names {
		t := tools[name]
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}

	req.Tools = defs

	return nil
}
