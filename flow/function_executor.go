package flow

import (
	"encoding/json"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/tool"
)

// FunctionExecutor executes a batch of function/tool calls and emits function
// response events through the provided emit callback. Implementations must:
//   - Respect runCtx.Context cancellation
//   - Never panic (recover internally and report the panic as a tool error)
//   - Emit exactly one FunctionResponse event per executed FunctionCall
//   - Apply ToolContext accumulated actions to emitted events
type FunctionExecutor interface {
	Execute(runCtx *core.RunContext, agent FlowAgent, toolRegistry map[string]tool.Tool, fnCalls []core.FunctionCall, emit func(core.Event) error)
}

// FunctionExecutorConfig configures the default executor.
type FunctionExecutorConfig struct {
	LogStartEvents bool // log a start line per function
}

// sequentialFunctionExecutor runs calls one after another in request order.
// Tools share the session's SupportContext, so calls are never overlapped.
type sequentialFunctionExecutor struct {
	cfg FunctionExecutorConfig
}

// NewSequentialFunctionExecutor constructs the default executor.
func NewSequentialFunctionExecutor(cfg FunctionExecutorConfig) FunctionExecutor {
	return &sequentialFunctionExecutor{cfg: cfg}
}

func (e *sequentialFunctionExecutor) Execute(
	runCtx *core.RunContext,
	agent FlowAgent,
	toolRegistry map[string]tool.Tool,
	fnCalls []core.FunctionCall,
	emit func(core.Event) error,
) {
	batchStart := time.Now()

	for _, fc := range fnCalls {
		if runCtx.Err() != nil {
			return
		}
		if err := emit(e.executeSingle(runCtx, agent, toolRegistry, fc)); err != nil {
			runCtx.LogError("agent.function.emit.error", "function", fc.Name, "error", err.Error())
			return
		}
	}

	runCtx.LogDebug(
		"agent.functions.batch.complete",
		"agent", agent.GetName(),
		"count", len(fnCalls),
		"duration_ms", time.Since(batchStart).Milliseconds(),
	)
}

func (e *sequentialFunctionExecutor) executeSingle(
	runCtx *core.RunContext,
	agent FlowAgent,
	toolRegistry map[string]tool.Tool,
	fc core.FunctionCall,
) core.Event {
	toolCtx := core.NewToolContext(runCtx, fc.ID)
	if e.cfg.LogStartEvents {
		runCtx.LogInfo("agent.function.start", "agent", agent.GetName(), "function", fc.Name, "function_call_id", fc.ID)
	}

	start := time.Now()
	var (
		result any
		err    error
	)
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = panicError(r)
				runCtx.LogError("agent.function.panic", "agent", agent.GetName(), "function", fc.Name, "recover", r)
			}
		}()
		result, err = executeTool(toolRegistry, toolCtx, fc.Name, fc.Arguments)
	}()

	runCtx.LogInfo(
		"agent.function.executed",
		"agent", agent.GetName(),
		"function", fc.Name,
		"duration_ms", time.Since(start).Milliseconds(),
		"error", err != nil,
	)

	respEv := core.NewFunctionResponseEvent(agent.GetName(), fc.ID, fc.Name, result, err)
	toolCtx.ApplyActions(&respEv)

	return respEv
}

// panicError converts a recovered panic value to an error.
func panicError(r any) error { return &panicErr{val: r, stack: debug.Stack()} }

type panicErr struct {
	val   any
	stack []byte
}

func (p *panicErr) Error() string { return fmt.Sprintf("panic recovered: %v", p.val) }

// executeTool centralizes tool lookup, argument decoding and execution.
func executeTool(toolRegistry map[string]tool.Tool, toolCtx *core.ToolContext, toolName, args string) (any, error) {
	impl, ok := toolRegistry[toolName]
	if !ok {
		return nil, tool.NewToolError(toolName, fmt.Sprintf("tool %s not found", toolName), tool.CodeNotFound)
	}

	argMap := map[string]any{}
	if args != "" {
		if err := json.Unmarshal([]byte(args), &argMap); err != nil {
			return nil, tool.NewToolError(toolName, fmt.Sprintf("failed to unmarshal args: %v", err), tool.CodeValidation)
		}
	}

	return impl.Call(toolCtx, argMap)
}
