package agent

import (
	"fmt"
	"sort"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/flow"
	"github.com/hupe1980/supportmesh/guardrail"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction     Instruction
	Description     string
	EnableStreaming bool
	Tools           []tool.Tool
	Guardrails      []guardrail.Guardrail
}

// ModelAgent is a support agent backed by a language model. It binds a
// system prompt, a tool subset and the output guardrails evaluated on its
// final answer. A ModelAgent is immutable after construction.
type ModelAgent struct {
	BaseAgent
	llm             model.Model
	instruction     Instruction
	tools           map[string]tool.Tool
	guardrails      []guardrail.Guardrail
	enableStreaming bool
}

// NewModelAgent creates a new model-based agent.
//
// Defaults: a generic instruction naming the agent, no tools, no guardrails,
// streaming disabled.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction: NewInstructionFromText(fmt.Sprintf("You are %s, a helpful support assistant.", name)),
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		BaseAgent:       NewBaseAgent(name),
		llm:             llm,
		instruction:     opts.Instruction,
		tools:           make(map[string]tool.Tool, len(opts.Tools)),
		guardrails:      append([]guardrail.Guardrail(nil), opts.Guardrails...),
		enableStreaming: opts.EnableStreaming,
	}
	if opts.Description != "" {
		a.SetDescription(opts.Description)
	}
	for _, t := range opts.Tools {
		a.tools[t.Name()] = t
	}

	return a
}

// HasTool checks if a tool is registered with the agent.
func (a *ModelAgent) HasTool(name string) bool {
	_, exists := a.tools[name]
	return exists
}

// ListTools returns the sorted names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetTool retrieves a specific tool by name.
func (a *ModelAgent) GetTool(name string) (tool.Tool, bool) {
	t, exists := a.tools[name]
	return t, exists
}

// Guardrails returns the output guardrails bound to this agent.
func (a *ModelAgent) Guardrails() []guardrail.Guardrail {
	return append([]guardrail.Guardrail(nil), a.guardrails...)
}

// GetName returns the agent's display name.
func (a *ModelAgent) GetName() string { return a.Name() }

// GetLLM returns the language model instance.
func (a *ModelAgent) GetLLM() model.Model { return a.llm }

// GetTools returns a copy of the registered tools.
func (a *ModelAgent) GetTools() map[string]tool.Tool {
	tools := make(map[string]tool.Tool, len(a.tools))
	for name, t := range a.tools {
		tools[name] = t
	}
	return tools
}

// IsStreamingEnabled returns whether streaming responses are enabled.
func (a *ModelAgent) IsStreamingEnabled() bool { return a.enableStreaming }

// ResolveInstructions returns the raw system prompt.
func (a *ModelAgent) ResolveInstructions(runCtx *core.RunContext) (string, error) {
	return a.instruction.Resolve(runCtx)
}

// Run implements core.Agent: it executes the single-agent flow and forwards
// every flow event to runCtx.Emit.
func (a *ModelAgent) Run(runCtx *core.RunContext) error {
	runCtx.LogDebug("agent.run.start", "agent", a.Name(), "run", runCtx.RunID)

	eventChan, err := flow.NewSingleAgentFlow(a).Execute(runCtx)
	if err != nil {
		runCtx.LogError("agent.flow.execute.error", "agent", a.Name(), "error", err.Error())

		return fmt.Errorf("flow execution failed: %w", err)
	}

	for event := range eventChan {
		select {
		case runCtx.Emit <- event:
			runCtx.LogDebug(
				"agent.event.forward",
				"agent", a.Name(),
				"event_id", event.ID,
				"fn_calls", len(event.GetFunctionCalls()),
				"partial", event.IsPartial(),
			)
		case <-runCtx.Done():
			runCtx.LogWarn("agent.run.context_done", "agent", a.Name(), "error", runCtx.Err())

			for range eventChan { //nolint:revive
			}

			return runCtx.Err()
		}
	}

	if err := runCtx.Err(); err != nil {
		return err
	}

	runCtx.LogDebug("agent.flow.execute.complete", "agent", a.Name())

	return nil
}
