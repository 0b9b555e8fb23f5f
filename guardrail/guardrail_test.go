package guardrail

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/supportmesh/core"
)

type wrapped struct{ text string }

func (w wrapped) Output() string { return w.text }

type stringer struct{}

func (stringer) String() string { return "SORRY from stringer" }

func TestNoApology(t *testing.T) {
	g := NoApology()
	sc := core.NewSupportContext("Ada", false)
	ctx := context.Background()

	tests := []struct {
		name    string
		output  any
		tripped bool
		matched []string
	}{
		{"empty", "", false, nil},
		{"nil", nil, false, nil},
		{"clean", "Your refund has been initiated.", false, nil},
		{"sorry", "Sorry, I cannot do that.", true, []string{"sorry"}},
		{"apologize upper", "I APOLOGIZE for the delay", true, []string{"apologize"}},
		{"apologies", "My apologies.", true, []string{"apologies"}},
		{"substring", "unsorryish behaviour", true, []string{"sorry"}},
		{"multiple", "Sorry, apologies again", true, []string{"sorry", "apologies"}},
		{"wrapped", wrapped{"so sorry"}, true, []string{"sorry"}},
		{"stringer", stringer{}, true, []string{"sorry"}},
		{"non-string", 42, false, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := g.Check(ctx, sc, tt.output)
			assert.Equal(t, tt.tripped, res.TripwireTriggered)
			assert.Equal(t, tt.matched, res.Matched)
			assert.Equal(t, tt.output, res.OutputInfo)
			assert.Equal(t, "no_apology", res.Guardrail)
		})
	}
}

func TestNoApology_HandoffScenario(t *testing.T) {
	res := NoApology().Check(context.Background(), nil, "I apologize for the confusion, HANDOFF GeneralAgent")
	assert.True(t, res.TripwireTriggered)
}

func TestKeyword_NormalizesWords(t *testing.T) {
	g := Keyword("custom", "  Refund ", "", "OOPS")
	res := g.Check(context.Background(), nil, "oops, no refund")
	require.True(t, res.TripwireTriggered)
	assert.Equal(t, []string{"refund", "oops"}, res.Matched)
	assert.Equal(t, "custom", g.Name())
}

func TestEvaluateAndTripped(t *testing.T) {
	guards := []Guardrail{NoApology(), Keyword("no_refund", "refund")}
	results := Evaluate(context.Background(), guards, nil, "Sorry, here is your answer")
	require.Len(t, results, 2)

	tripped := Tripped(results)
	require.Len(t, tripped, 1)
	assert.Equal(t, "no_apology", tripped[0].Guardrail)

	assert.Empty(t, Tripped(Evaluate(context.Background(), guards, nil, "")))
}

func TestText(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "x", Text("x"))
	assert.Equal(t, "w", Text(wrapped{"w"}))
	assert.Equal(t, "3.5", Text(3.5))
}
