package desk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/runner"
	"github.com/hupe1980/supportmesh/support"
)

func TestNextAgent(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   support.AgentID
	}{
		{"empty", "", support.Triage},
		{"plain", "Your refund was processed.", support.Triage},
		{"billing", "I can't process that. HANDOFF BillingAgent", support.Billing},
		{"technical", "HANDOFF TechnicalAgent please", support.Technical},
		{"general", "Routing. HANDOFF GeneralAgent", support.General},
		{"billing beats technical", "HANDOFF TechnicalAgent or HANDOFF BillingAgent", support.Billing},
		{"technical beats general", "HANDOFF GeneralAgent HANDOFF TechnicalAgent", support.Technical},
		{"case sensitive", "handoff billingagent", support.Triage},
		{"no space", "HANDOFFBillingAgent", support.Triage},
		{"triage marker is no transition", "HANDOFF TriageAgent", support.Triage},
		{"embedded", "xxHANDOFF GeneralAgentxx", support.General},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextAgent(tt.output))
		})
	}
}

func TestNextAgent_IndependentOfPriorState(t *testing.T) {
	output := "HANDOFF GeneralAgent"
	for range support.AgentIDs {
		assert.Equal(t, support.General, NextAgent(output))
	}
}

func TestResolve(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		r := Resolve(nil)
		assert.Equal(t, KindReply, r.Kind)
		assert.Equal(t, support.Triage, r.Next())
	})

	t.Run("plain reply reverts to triage", func(t *testing.T) {
		r := Resolve(&runner.Result{Output: "Refunds are only for premium users."})
		assert.Equal(t, KindReply, r.Kind)
		assert.Equal(t, "reply", r.Kind.String())
		assert.Equal(t, support.Triage, r.Next())
	})

	t.Run("marker", func(t *testing.T) {
		r := Resolve(&runner.Result{Output: "HANDOFF TechnicalAgent"})
		assert.Equal(t, KindHandoff, r.Kind)
		assert.Equal(t, "handoff", r.Kind.String())
		assert.False(t, r.Structured)
		assert.Equal(t, support.Technical, r.Next())
	})

	t.Run("structured wins over marker", func(t *testing.T) {
		r := Resolve(&runner.Result{Output: "HANDOFF BillingAgent", Handoff: "GeneralAgent"})
		assert.True(t, r.Structured)
		assert.Equal(t, support.General, r.Next())
		assert.Equal(t, "HANDOFF BillingAgent", r.Text)
	})

	t.Run("unknown structured target falls back to markers", func(t *testing.T) {
		r := Resolve(&runner.Result{Output: "HANDOFF BillingAgent", Handoff: "SalesAgent"})
		assert.False(t, r.Structured)
		assert.Equal(t, support.Billing, r.Next())
	})
}

func TestParseTarget(t *testing.T) {
	id, err := ParseTarget(" TechnicalAgent ")
	require.NoError(t, err)
	assert.Equal(t, support.Technical, id)

	_, err = ParseTarget("SalesAgent")
	assert.True(t, errors.Is(err, ErrUnknownAgent))
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": PolicyBlock, "block": PolicyBlock, " WARN ": PolicyWarn, "retry": PolicyRetry} {
		got, err := ParsePolicy(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParsePolicy("ignore")
	assert.Error(t, err)
}

func TestIsExit(t *testing.T) {
	for _, q := range []string{"exit", "EXIT", " Quit ", "qUiT"} {
		assert.True(t, IsExit(q), q)
	}
	for _, q := range []string{"", "exit now", "bye"} {
		assert.False(t, IsExit(q), q)
	}
}
