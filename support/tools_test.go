package support

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/internal/testutil"
	"github.com/hupe1980/supportmesh/tool"
)

func newToolContext(sc *core.SupportContext) *core.ToolContext {
	return testutil.NewRunContextBuilder().Agent("TestAgent").SupportContext(sc).ToolContext("fc-1")
}

func TestGreet(t *testing.T) {
	out := Greet(core.NewSupportContext("Ada", false), "hi there")
	assert.True(t, out.IsAuthorized())
	assert.Equal(t, "Hello Ada! How can I assist you today?", out.String())

	out = Greet(core.NewSupportContext("", false), "")
	assert.Equal(t, "Hello User! How can I assist you today?", out.Message)
}

func TestRefund_DeniedForNonPremium(t *testing.T) {
	sc := core.NewSupportContext("Ada", false)
	for _, amount := range []string{"", "100", "-5", "ten dollars", "1e9", "💸"} {
		out := Refund(sc, amount)
		assert.Equal(t, StatusDenied, out.Status, amount)
		assert.Equal(t, "Refunds are only for premium users.", out.Message, amount)
	}
}

func TestRefund_AuthorizedForPremium(t *testing.T) {
	sc := core.NewSupportContext("Ada", true)
	for _, amount := range []string{"", "100", "ten dollars", "49.99"} {
		out := Refund(sc, amount)
		assert.True(t, out.IsAuthorized(), amount)
		assert.Contains(t, out.Message, amount)
		assert.Equal(t, "💰 Refund of $"+amount+" initiated.", out.Message)
	}
}

func TestRestartService(t *testing.T) {
	tests := []struct {
		issueType  string
		authorized bool
	}{
		{"", false},
		{"billing", false},
		{"Technical", false},
		{" technical", false},
		{"technical ", false},
		{"TECHNICAL", false},
		{"technical", true},
	}

	for _, tt := range tests {
		t.Run(tt.issueType, func(t *testing.T) {
			sc := core.NewSupportContext("Ada", false)
			sc.IssueType = tt.issueType

			out := RestartService(sc, "api-gateway")
			assert.Equal(t, tt.authorized, out.IsAuthorized())
			if tt.authorized {
				assert.Equal(t, "🔧 Service 'api-gateway' restarted.", out.Message)
			} else {
				assert.Equal(t, "Restart tool only available for technical issues.", out.Message)
			}
		})
	}
}

func TestClassifyIssue(t *testing.T) {
	sc := core.NewSupportContext("Ada", false)

	out := ClassifyIssue(sc, "  Technical ")
	assert.True(t, out.IsAuthorized())
	assert.Equal(t, "Issue classified as technical.", out.Message)
	assert.Equal(t, IssueTechnical, sc.IssueType)

	out = ClassifyIssue(sc, "hardware")
	assert.False(t, out.IsAuthorized())
	assert.Equal(t, "Unknown issue type 'hardware'. Use billing, technical or general.", out.Message)
	assert.Equal(t, IssueTechnical, sc.IssueType, "unknown type must not overwrite")

	// classification unlocks restart_service
	assert.True(t, RestartService(sc, "db").IsAuthorized())
}

func TestTools_ThroughFunctionTool(t *testing.T) {
	sc := core.NewSupportContext("Ada", true)

	res, err := NewRefundTool().Call(newToolContext(sc), map[string]any{"amount": "20"})
	require.NoError(t, err)
	assert.Equal(t, Authorized("💰 Refund of $20 initiated."), res)

	res, err = NewGreetTool().Call(newToolContext(sc), map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada! How can I assist you today?", res.(Outcome).Message)

	res, err = NewRestartServiceTool().Call(newToolContext(sc), map[string]any{"service": "web"})
	require.NoError(t, err)
	assert.Equal(t, StatusDenied, res.(Outcome).Status)
}

func TestTools_MissingArgumentIsValidationError(t *testing.T) {
	_, err := NewRefundTool().Call(newToolContext(core.NewSupportContext("Ada", true)), map[string]any{})
	require.Error(t, err)

	var toolErr *tool.ToolError
	require.True(t, errors.As(err, &toolErr))
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}

func TestClassifyIssueTool_RecordsStateChange(t *testing.T) {
	sc := core.NewSupportContext("Ada", false)
	tc := newToolContext(sc)

	res, err := NewClassifyIssueTool().Call(tc, map[string]any{"issue_type": "billing"})
	require.NoError(t, err)
	assert.True(t, res.(Outcome).IsAuthorized())
	assert.Equal(t, IssueBilling, sc.IssueType)
	assert.Equal(t, map[string]any{"issue_type": "billing"}, tc.Actions().StateDelta)

	tc = newToolContext(sc)
	res, err = NewClassifyIssueTool().Call(tc, map[string]any{"issue_type": "other"})
	require.NoError(t, err)
	assert.False(t, res.(Outcome).IsAuthorized())
	assert.Empty(t, tc.Actions().StateDelta)
}
