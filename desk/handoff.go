package desk

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/runner"
	"github.com/hupe1980/supportmesh/support"
)

// ErrUnknownAgent is returned when a handoff names an agent outside the catalog.
var ErrUnknownAgent = errors.New("unknown agent")

// markerOrder is the evaluation order of text markers; the first match wins.
var markerOrder = []support.AgentID{support.Billing, support.Technical, support.General}

// NextAgent returns the agent selected by the handoff markers in output.
// Markers are matched as case-sensitive substrings in the order Billing,
// Technical, General; output without a marker routes back to Triage.
func NextAgent(output string) support.AgentID {
	for _, id := range markerOrder {
		if strings.Contains(output, support.HandoffMarker(id)) {
			return id
		}
	}
	return support.Triage
}

// ReplyKind tags a Reply.
type ReplyKind int

const (
	// KindReply is a plain answer; the next turn starts at Triage.
	KindReply ReplyKind = iota
	// KindHandoff routes the next turn to Target.
	KindHandoff
)

func (k ReplyKind) String() string {
	if k == KindHandoff {
		return "handoff"
	}
	return "reply"
}

// Reply is the structured outcome of a turn.
type Reply struct {
	Kind   ReplyKind
	Text   string
	Target support.AgentID
	// Structured reports whether the handoff came from the handoff tool
	// rather than a text marker.
	Structured bool
}

// Next returns the agent that handles the following turn.
func (r Reply) Next() support.AgentID {
	if r.Kind == KindHandoff {
		return r.Target
	}
	return support.Triage
}

// ParseTarget resolves a handoff target name.
func ParseTarget(name string) (support.AgentID, error) {
	id, ok := support.ParseAgentID(strings.TrimSpace(name))
	if !ok {
		return support.Triage, fmt.Errorf("%w: %q", ErrUnknownAgent, name)
	}
	return id, nil
}

// Resolve turns a run result into a Reply. A handoff recorded by the handoff
// tool wins over text markers; an unresolvable tool target is ignored and the
// markers decide.
func Resolve(res *runner.Result) Reply {
	if res == nil {
		return Reply{Kind: KindReply}
	}

	if res.Handoff != "" {
		if id, err := ParseTarget(res.Handoff); err == nil {
			return Reply{Kind: KindHandoff, Text: res.Output, Target: id, Structured: true}
		}
	}

	if id := NextAgent(res.Output); id != support.Triage {
		return Reply{Kind: KindHandoff, Text: res.Output, Target: id}
	}

	return Reply{Kind: KindReply, Text: res.Output}
}
