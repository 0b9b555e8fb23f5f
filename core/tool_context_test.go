package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testLogger struct{ infos []string }

func (l *testLogger) Debug(string, ...any)      {}
func (l *testLogger) Info(msg string, _ ...any) { l.infos = append(l.infos, msg) }
func (l *testLogger) Warn(string, ...any)       {}
func (l *testLogger) Error(string, ...any)      {}

func newTestRunContext(sc *SupportContext, maxCalls int) *RunContext {
	return NewRunContext(
		context.Background(),
		"run-1",
		AgentInfo{Name: "TriageAgent", Type: "model"},
		NewTextContent(RoleUser, "my app is down"),
		sc,
		maxCalls,
		nil,
		nil,
	)
}

func TestNewSupportContext(t *testing.T) {
	sc := NewSupportContext("  Ada ", true)
	assert.Equal(t, "Ada", sc.UserName)
	assert.True(t, sc.IsPremiumUser)
	assert.Equal(t, "", sc.IssueType)

	assert.Equal(t, DefaultUserName, NewSupportContext("", false).UserName)
	assert.Equal(t, DefaultUserName, NewSupportContext("   ", false).UserName)

	state := sc.State()
	assert.Equal(t, "Ada", state["user_name"])
	assert.Equal(t, true, state["is_premium_user"])
	assert.Equal(t, "", state["issue_type"])
}

func TestRunContext_Transcript(t *testing.T) {
	rc := newTestRunContext(nil, 0)
	require.NotNil(t, rc.Support, "nil support context should be defaulted")
	assert.Len(t, rc.Transcript(), 1)

	partial := true
	p := NewMessageEvent("TriageAgent", "par")
	p.Partial = &partial
	rc.Record(p)
	rc.Record(NewErrorEvent("run-1", errors.New("x")))
	assert.Len(t, rc.Transcript(), 1, "partial and content-less events are not recorded")

	rc.Record(NewFunctionCallEvent("TriageAgent", "classify_issue", `{"issue_type":"technical"}`))
	rc.Record(NewFunctionResponseEvent("TriageAgent", "c1", "classify_issue", "ok", nil))

	tr := rc.Transcript()
	require.Len(t, tr, 3)
	assert.Equal(t, RoleAssistant, tr[1].Role)
	assert.Equal(t, RoleTool, tr[2].Role)

	tr[0] = Content{}
	assert.Equal(t, RoleUser, rc.Transcript()[0].Role, "Transcript returns a copy")
}

func TestToolContext_SupportIsShared(t *testing.T) {
	sc := NewSupportContext("Ada", false)
	rc := newTestRunContext(sc, 0)
	tc := NewToolContext(rc, "fc-1")

	assert.Equal(t, "fc-1", tc.FunctionCallID())
	assert.Equal(t, "run-1", tc.RunID())
	assert.Equal(t, "TriageAgent", tc.AgentName())
	assert.NotNil(t, tc.Context())

	tc.Support().IssueType = "technical"
	assert.Equal(t, "technical", sc.IssueType)
}

func TestToolContext_ApplyActions(t *testing.T) {
	logger := &testLogger{}
	rc := NewRunContext(context.Background(), "run-1", AgentInfo{Name: "BillingAgent"}, NewTextContent(RoleUser, "q"), nil, 0, nil, logger)
	tc := NewToolContext(rc, "fc-2")

	tc.RecordStateChange("issue_type", "billing")
	tc.TransferToAgent("TechnicalAgent")

	ev := NewFunctionResponseEvent("BillingAgent", "fc-2", "handoff", "ok", nil)
	tc.ApplyActions(&ev)

	require.NotNil(t, ev.Actions.TransferToAgent)
	assert.Equal(t, "TechnicalAgent", *ev.Actions.TransferToAgent)
	assert.Equal(t, "billing", ev.Actions.StateDelta["issue_type"])
	assert.Contains(t, logger.infos, "tool.transfer.request")
}

func TestModelLimiter(t *testing.T) {
	ml := NewModelLimiter(2)
	require.NoError(t, ml.Increment())
	require.NoError(t, ml.Increment())
	assert.Equal(t, 0, ml.Remaining())

	err := ml.Increment()
	assert.ErrorIs(t, err, ErrModelCallLimit)
	assert.Equal(t, 3, ml.Count())

	unlimited := NewModelLimiter(0)
	for i := 0; i < 50; i++ {
		require.NoError(t, unlimited.Increment())
	}
	assert.Equal(t, -1, unlimited.Remaining())
}
