package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/guardrail"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

// MockModelImpl for testing LLM functionality
type MockModelImpl struct{ mock.Mock }

func (m *MockModelImpl) Generate(ctx context.Context, req model.Request) (<-chan model.Response, <-chan error) {
	args := m.Called(ctx, req)

	respCh := make(chan model.Response, 1)
	errCh := make(chan error, 1)

	respCh <- model.Response{
		Content:      core.NewTextContent(core.RoleAssistant, args.String(0)),
		FinishReason: "stop",
	}

	close(respCh)
	close(errCh)

	return respCh, errCh
}

func (m *MockModelImpl) Info() model.Info {
	args := m.Called()
	return args.Get(0).(model.Info)
}

func noopTool(name string) tool.Tool {
	return tool.NewFunctionTool(name, name, nil, func(*core.ToolContext, map[string]any) (any, error) {
		return "ok", nil
	})
}

func TestModelAgent_NewAgent(t *testing.T) {
	mockLLM := &MockModelImpl{}
	agent := NewModelAgent("Test Agent", mockLLM)

	assert.NotNil(t, agent)
	assert.Equal(t, mockLLM, agent.GetLLM())
	assert.Empty(t, agent.GetTools())
	assert.Empty(t, agent.Guardrails())
	assert.False(t, agent.IsStreamingEnabled())
	assert.Equal(t, "Test Agent", agent.GetName())
	assert.Equal(t, "Agent Test Agent", agent.Description())

	instr, err := agent.ResolveInstructions(newTestRunContext())
	require.NoError(t, err)
	assert.Contains(t, instr, "Test Agent")
}

func TestModelAgent_Options(t *testing.T) {
	agent := NewModelAgent("BillingAgent", &MockModelImpl{}, func(o *ModelAgentOptions) {
		o.Instruction = NewInstructionFromText("You handle billing.")
		o.Description = "Billing specialist"
		o.EnableStreaming = true
		o.Tools = []tool.Tool{noopTool("refund"), noopTool("greet_user")}
		o.Guardrails = []guardrail.Guardrail{guardrail.NoApology()}
	})

	assert.Equal(t, "Billing specialist", agent.Description())
	assert.True(t, agent.IsStreamingEnabled())
	assert.Equal(t, []string{"greet_user", "refund"}, agent.ListTools())
	assert.True(t, agent.HasTool("refund"))
	assert.False(t, agent.HasTool("restart_service"))

	got, ok := agent.GetTool("refund")
	require.True(t, ok)
	assert.Equal(t, "refund", got.Name())

	require.Len(t, agent.Guardrails(), 1)
	assert.Equal(t, "no_apology", agent.Guardrails()[0].Name())

	instr, err := agent.ResolveInstructions(newTestRunContext())
	require.NoError(t, err)
	assert.Equal(t, "You handle billing.", instr)
}

func TestModelAgent_GetToolsReturnsCopy(t *testing.T) {
	agent := NewModelAgent("A", &MockModelImpl{}, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{noopTool("refund")}
	})

	tools := agent.GetTools()
	delete(tools, "refund")

	assert.True(t, agent.HasTool("refund"))
}

func TestModelAgent_Run(t *testing.T) {
	mockLLM := &MockModelImpl{}
	mockLLM.On("Info").Return(model.Info{Name: "mock"})
	mockLLM.On("Generate", mock.Anything, mock.Anything).Return("Your refund is on its way.")

	agent := NewModelAgent("BillingAgent", mockLLM)

	emit := make(chan core.Event, 8)
	rc := core.NewRunContext(
		context.Background(),
		"run-1",
		core.AgentInfo{Name: agent.Name(), Type: "model"},
		core.NewTextContent(core.RoleUser, "refund please"),
		core.NewSupportContext("Ada", true),
		4,
		emit,
		logging.NoOpLogger{},
	)

	require.NoError(t, agent.Run(rc))
	close(emit)

	var events []core.Event
	for ev := range emit {
		events = append(events, ev)
	}

	require.Len(t, events, 1)
	assert.True(t, events[0].IsFinalResponse())
	assert.Equal(t, "Your refund is on its way.", events[0].Text())
	assert.Equal(t, "BillingAgent", events[0].Author)
	mockLLM.AssertNumberOfCalls(t, "Generate", 1)
}

func TestModelAgent_RunWithTools(t *testing.T) {
	llm := model.NewScriptedModel("scripted",
		model.CallStep("classify_issue", `{"issue":"app crash"}`),
		model.TextStep("Routing you now. HANDOFF TechnicalAgent"),
	)
	classify := tool.NewFunctionTool("classify_issue", "classify", nil, func(tc *core.ToolContext, _ map[string]any) (any, error) {
		tc.Support().IssueType = "technical"
		return "Issue classified as technical.", nil
	})

	agent := NewModelAgent("TriageAgent", llm, func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{classify}
	})

	emit := make(chan core.Event, 8)
	rc := core.NewRunContext(
		context.Background(),
		"run-2",
		core.AgentInfo{Name: agent.Name(), Type: "model"},
		core.NewTextContent(core.RoleUser, "my app keeps crashing"),
		core.NewSupportContext("Ada", false),
		4,
		emit,
		logging.NoOpLogger{},
	)

	require.NoError(t, agent.Run(rc))
	close(emit)

	var last core.Event
	count := 0
	for ev := range emit {
		last = ev
		count++
	}

	assert.Equal(t, 3, count)
	assert.Equal(t, "Routing you now. HANDOFF TechnicalAgent", last.Text())
	assert.Equal(t, "technical", rc.Support.IssueType)
}

func TestModelAgent_RunCancelled(t *testing.T) {
	llm := model.NewScriptedModel("scripted", model.TextStep("never"))
	agent := NewModelAgent("GeneralAgent", llm)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	emit := make(chan core.Event)
	rc := core.NewRunContext(ctx, "run-3", core.AgentInfo{Name: agent.Name()},
		core.NewTextContent(core.RoleUser, "hi"), nil, 4, emit, logging.NoOpLogger{})

	err := agent.Run(rc)
	assert.ErrorIs(t, err, context.Canceled)
}
