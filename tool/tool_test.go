package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

func testToolContext(id string) *core.ToolContext {
	rc := core.NewRunContext(
		context.Background(),
		"run-1",
		core.AgentInfo{Name: "TriageAgent", Type: "model"},
		core.NewTextContent(core.RoleUser, "hello"),
		core.NewSupportContext("Ada", false),
		0,
		nil,
		nil,
	)
	return core.NewToolContext(rc, id)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}

	sumTool := NewFunctionTool("sum", "Add numbers", params, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["a"].(float64) + args["b"].(float64), nil
	})

	result, err := sumTool.Call(testToolContext("fc1"), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"amount": map[string]any{"type": "string"},
		},
		"required": []any{"amount"},
	}
	called := false
	refund := NewFunctionTool("refund", "Refund", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		called = true
		return nil, nil
	})

	_, err := refund.Call(testToolContext("fc2"), map[string]any{})
	require.Error(t, err)
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.False(t, called, "function must not run on invalid arguments")

	var verr *ValidationError
	require.True(t, errors.As(toolErr.Details.(error), &verr))
	assert.NotEmpty(t, verr.Problems)

	_, err = refund.Call(testToolContext("fc3"), map[string]any{"amount": 50})
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(testToolContext("fc4"), map[string]any{})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ToolErrorPassthrough(t *testing.T) {
	custom := NewToolError("custom", "nope", "E42")
	tl := NewFunctionTool("custom", "", nil, func(_ *core.ToolContext, _ map[string]any) (any, error) {
		return nil, custom
	})
	_, err := tl.Call(testToolContext("fc5"), nil)
	assert.Same(t, custom, err)
}

type greetArgs struct {
	Service string `json:"service" description:"Service name"`
}

func TestNewFunctionToolFromStruct(t *testing.T) {
	tl := NewFunctionToolFromStruct("restart_service", "Restart", greetArgs{}, func(_ *core.ToolContext, args map[string]any) (any, error) {
		return args["service"], nil
	})
	assert.Equal(t, "restart_service", tl.Name())
	assert.Equal(t, "Restart", tl.Description())
	assert.Equal(t, []string{"service"}, tl.Parameters()["required"])

	out, err := tl.Call(testToolContext("fc6"), map[string]any{"service": "api"})
	require.NoError(t, err)
	assert.Equal(t, "api", out)
}

// -------------------- Handoff Tool --------------------

func TestHandoffTool(t *testing.T) {
	h := NewHandoffTool("BillingAgent", "TechnicalAgent")
	assert.Equal(t, HandoffToolName, h.Name())

	tc := testToolContext("fc7")
	out, err := h.Call(tc, map[string]any{"agent": "BillingAgent"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"handoff": true, "agent": "BillingAgent"}, out)
	require.NotNil(t, tc.Actions().TransferToAgent)
	assert.Equal(t, "BillingAgent", *tc.Actions().TransferToAgent)

	tc = testToolContext("fc8")
	_, err = h.Call(tc, map[string]any{"agent": "SalesAgent"})
	var toolErr *ToolError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, CodeValidation, toolErr.Code)
	assert.Nil(t, tc.Actions().TransferToAgent)

	_, err = h.Call(tc, map[string]any{})
	assert.Error(t, err)
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	plain := &ToolError{Tool: "demo", Message: "x"}
	assert.Equal(t, "tool error in demo: x", plain.Error())
}
