package desk

import (
	"fmt"
	"strings"
)

// Policy selects how a tripped guardrail is enforced.
type Policy string

const (
	// PolicyBlock withholds the response and prints a notice.
	PolicyBlock Policy = "block"
	// PolicyWarn prints the response followed by a warning.
	PolicyWarn Policy = "warn"
	// PolicyRetry re-runs the agent with a corrective note, then blocks.
	PolicyRetry Policy = "retry"
)

// ParsePolicy parses a policy name. The empty string selects PolicyBlock.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyBlock, nil
	case PolicyBlock, PolicyWarn, PolicyRetry:
		return p, nil
	default:
		return "", fmt.Errorf("unknown guardrail policy %q (want block, warn or retry)", s)
	}
}

// correctiveNote is appended to the query when a retry is attempted.
const correctiveNote = "\n\n(Note: your previous answer was rejected by the %s guardrail. Answer again without apologetic language.)"
