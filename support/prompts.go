package support

import (
	"fmt"
	"strings"

	"github.com/hupe1980/supportmesh/tool"
)

// HandoffMarker returns the literal text marker that routes the next turn to
// target.
func HandoffMarker(target AgentID) string { return "HANDOFF " + target.String() }

const triagePrompt = `You are a triage agent helping {{.user_name}}. Based on the user query, call the classify_issue tool with 'billing', 'technical', or 'general'.
- For billing/refund issues, respond HANDOFF BillingAgent.
- For technical issues, respond HANDOFF TechnicalAgent.
- For general inquiries, respond HANDOFF GeneralAgent.
Use tools as appropriate.`

const billingPrompt = `You handle billing issues for {{.user_name}}. Use the refund tool if the user requests a refund and is premium.
The user is {{if .is_premium_user}}a premium user{{else}}not a premium user{{end}}.`

const technicalPrompt = `You handle technical problems for {{.user_name}}. Use the restart_service tool for 'technical' issues.
Current issue type: {{default "unclassified" .issue_type}}.`

const generalPrompt = `You handle general inquiries and greetings for {{.user_name}}. Use the greet tool to greet the user.`

// defaultPrompt returns the built-in system prompt for id, extended with
// the handoff instructions for its targets.
func defaultPrompt(id AgentID) string {
	var base string
	switch id {
	case Triage:
		base = triagePrompt
	case Billing:
		base = billingPrompt
	case Technical:
		base = technicalPrompt
	default:
		base = generalPrompt
	}
	return base + "\n" + handoffInstructions(id)
}

func handoffInstructions(id AgentID) string {
	targets := HandoffTargets(id)
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}

	var b strings.Builder
	if id != Triage {
		fmt.Fprintf(&b, "If the request belongs to another team, respond with the marker HANDOFF <AgentName> (one of %s).\n", strings.Join(names, ", "))
	}
	fmt.Fprintf(&b, "Whenever you respond with a HANDOFF marker, also call the %s tool with the same agent name.\n", tool.HandoffToolName)
	b.WriteString("Never apologize; state clearly what you can do instead.")

	return b.String()
}
