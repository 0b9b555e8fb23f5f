package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/config"
	"github.com/hupe1980/supportmesh/model"
)

type testIO struct {
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCommand(t *testing.T, input string, llm model.Model, args ...string) (*testIO, func() error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUPPORTDESK_API_KEY", "")

	tio := &testIO{stdout: &bytes.Buffer{}, stderr: &bytes.Buffer{}}
	cmd := NewRootCommand(func(o *Options) {
		o.Stdin = strings.NewReader(input)
		o.Stdout = tio.stdout
		o.Stderr = tio.stderr
		o.Model = llm
	})
	cmd.SetArgs(args)

	return tio, func() error { return cmd.ExecuteContext(context.Background()) }
}

func TestRootCommand_RunsSession(t *testing.T) {
	llm := model.NewScriptedModel("scripted", model.TextStep("I can't process that. HANDOFF BillingAgent"))
	tio, run := newTestCommand(t, "Ada\nno\nrefund\nexit\n", llm)

	require.NoError(t, run())

	out := tio.stdout.String()
	assert.Contains(t, out, "✅ Welcome to Support Agent. Type 'exit' to quit.")
	assert.Contains(t, out, "I can't process that. HANDOFF BillingAgent")
	assert.True(t, strings.HasSuffix(out, "👋 Goodbye!\n"))
}

func TestRootCommand_GuardrailPolicyFlag(t *testing.T) {
	llm := model.NewScriptedModel("scripted", model.TextStep("Sorry about that."))
	tio, run := newTestCommand(t, "Ada\nno\nhello\nquit\n", llm, "--guardrail-policy", "warn")

	require.NoError(t, run())
	assert.Contains(t, tio.stdout.String(), "Sorry about that.\n⚠️  Guardrail triggered: no_apology")
}

func TestRootCommand_VerboseLogsToStderr(t *testing.T) {
	llm := model.NewScriptedModel("scripted", model.TextStep("Hello Ada!"))
	tio, run := newTestCommand(t, "Ada\nno\nhi\nexit\n", llm, "--verbose", "--log-format", "json")

	require.NoError(t, run())
	assert.Contains(t, tio.stderr.String(), `"message":"desk.turn.complete"`)
	assert.NotContains(t, tio.stdout.String(), "desk.turn.complete")
}

func TestRootCommand_FailFast(t *testing.T) {
	llm := model.NewScriptedModel("scripted", model.ErrorStep(errors.New("quota exceeded")))
	tio, run := newTestCommand(t, "Ada\nno\nhi\nhi\n", llm, "--fail-fast")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, tio.stdout.String(), "⚠️  Agent error:")
}

func TestRootCommand_InvalidProvider(t *testing.T) {
	_, run := newTestCommand(t, "", nil, "--provider", "cohere")
	assert.ErrorIs(t, run(), config.ErrUnknownProvider)
}

func TestVersionCommand(t *testing.T) {
	tio, run := newTestCommand(t, "", nil, "version")
	require.NoError(t, run())
	assert.Equal(t, "supportdesk version "+GetVersion()+"\n", tio.stdout.String())
}
