package tool

import (
	"fmt"
	"slices"

	"github.com/hupe1980/supportmesh/core"
)

// HandoffToolName is the name models use to request a structured handoff.
const HandoffToolName = "handoff"

// handoffTool records a structured request to route the next turn to
// another agent. Targets are restricted to the configured names.
type handoffTool struct {
	targets []string
}

// NewHandoffTool constructs the handoff tool for the given target agents.
func NewHandoffTool(targets ...string) Tool {
	return &handoffTool{targets: slices.Clone(targets)}
}

func (t *handoffTool) Name() string { return HandoffToolName }

func (t *handoffTool) Description() string {
	return "Route the conversation to a specialist agent. The chosen agent handles the user's next message."
}

func (t *handoffTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent": map[string]any{
				"type":        "string",
				"description": "Target agent name",
				"enum":        t.targets,
			},
		},
		"required": []string{"agent"},
	}
}

func (t *handoffTool) Call(tc *core.ToolContext, args map[string]any) (any, error) {
	agentName, _ := args["agent"].(string)
	if agentName == "" {
		return nil, NewToolError(HandoffToolName, "field 'agent' must be non-empty string", CodeValidation)
	}
	if len(t.targets) > 0 && !slices.Contains(t.targets, agentName) {
		return nil, NewToolError(HandoffToolName, fmt.Sprintf("unknown agent %q", agentName), CodeValidation)
	}

	tc.TransferToAgent(agentName)

	return map[string]any{"handoff": true, "agent": agentName}, nil
}
