// Package guardrail implements output checks evaluated on an agent's final
// response. A guardrail is a pure function of the output; enforcement is left
// to the caller.
package guardrail

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hupe1980/supportmesh/core"
)

// Result is the outcome of a single guardrail check.
type Result struct {
	// Guardrail is the name of the guardrail that produced the result.
	Guardrail string `json:"guardrail"`
	// OutputInfo carries the checked output unchanged.
	OutputInfo any `json:"output_info"`
	// TripwireTriggered reports whether the output was rejected.
	TripwireTriggered bool `json:"tripwire_triggered"`
	// Matched lists the forbidden words found, in declaration order.
	Matched []string `json:"matched,omitempty"`
}

// Guardrail checks an agent output.
type Guardrail interface {
	Name() string
	Check(ctx context.Context, sc *core.SupportContext, output any) Result
}

// Outputter is implemented by wrapped responses that expose their text.
type Outputter interface {
	Output() string
}

// Text extracts the textual payload of an output.
func Text(output any) string {
	switch v := output.(type) {
	case nil:
		return ""
	case Outputter:
		return v.Output()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// keyword trips when the lower-cased output contains any forbidden word as
// a raw substring.
type keyword struct {
	name  string
	words []string
}

// Keyword returns a guardrail rejecting outputs containing any of words.
// Words are matched case-insensitively without word boundaries.
func Keyword(name string, words ...string) Guardrail {
	lower := newLower()
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		if w = lower.String(strings.TrimSpace(w)); w != "" {
			normalized = append(normalized, w)
		}
	}
	return &keyword{name: name, words: normalized}
}

// newLower returns a fresh caser; casers are stateful and must not be shared.
func newLower() cases.Caser { return cases.Lower(language.Und) }

// DefaultApologyWords are the words rejected by NoApology.
var DefaultApologyWords = []string{"sorry", "apologize", "apologies"}

// NoApology rejects apologetic language.
func NoApology() Guardrail {
	return Keyword("no_apology", DefaultApologyWords...)
}

func (k *keyword) Name() string { return k.name }

func (k *keyword) Check(_ context.Context, _ *core.SupportContext, output any) Result {
	res := Result{Guardrail: k.name, OutputInfo: output}

	text := Text(output)
	if text == "" {
		return res
	}

	text = newLower().String(text)
	for _, w := range k.words {
		if strings.Contains(text, w) {
			res.Matched = append(res.Matched, w)
		}
	}
	res.TripwireTriggered = len(res.Matched) > 0

	return res
}

// Evaluate runs every guardrail against output and returns all results.
func Evaluate(ctx context.Context, guards []Guardrail, sc *core.SupportContext, output any) []Result {
	results := make([]Result, 0, len(guards))
	for _, g := range guards {
		results = append(results, g.Check(ctx, sc, output))
	}
	return results
}

// Tripped returns the results whose tripwire fired.
func Tripped(results []Result) []Result {
	var tripped []Result
	for _, r := range results {
		if r.TripwireTriggered {
			tripped = append(tripped, r)
		}
	}
	return tripped
}
