package support

import (
	"fmt"

	"github.com/hupe1980/supportmesh/agent"
	"github.com/hupe1980/supportmesh/guardrail"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

// AgentID identifies one of the four support agents. The zero value is
// Triage, the initial state of every session.
type AgentID int

const (
	Triage AgentID = iota
	Billing
	Technical
	General
)

// AgentIDs lists every agent in a stable order.
var AgentIDs = []AgentID{Triage, Billing, Technical, General}

// String returns the agent name used in markers and tool arguments.
func (id AgentID) String() string {
	switch id {
	case Triage:
		return "TriageAgent"
	case Billing:
		return "BillingAgent"
	case Technical:
		return "TechnicalAgent"
	case General:
		return "GeneralAgent"
	default:
		return fmt.Sprintf("AgentID(%d)", int(id))
	}
}

// ParseAgentID resolves an agent name such as "BillingAgent".
func ParseAgentID(name string) (AgentID, bool) {
	for _, id := range AgentIDs {
		if id.String() == name {
			return id, true
		}
	}
	return Triage, false
}

// HandoffTargets returns the agents id may hand off to.
func HandoffTargets(id AgentID) []AgentID {
	targets := make([]AgentID, 0, len(AgentIDs)-1)
	for _, t := range AgentIDs {
		if t != id {
			targets = append(targets, t)
		}
	}
	return targets
}

// CatalogOptions configures NewCatalog.
type CatalogOptions struct {
	// Guardrails are bound to every agent. Defaults to NoApology.
	Guardrails []guardrail.Guardrail
	// EnableStreaming requests streamed model responses.
	EnableStreaming bool
	// Prompts overrides the built-in system prompt per agent.
	Prompts map[AgentID]string
}

// Catalog holds the four immutable agent definitions sharing one model.
type Catalog struct {
	agents map[AgentID]*agent.ModelAgent
}

// NewCatalog builds the triage, billing, technical and general agents.
func NewCatalog(llm model.Model, optFns ...func(o *CatalogOptions)) *Catalog {
	opts := CatalogOptions{
		Guardrails: []guardrail.Guardrail{guardrail.NoApology()},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	c := &Catalog{agents: make(map[AgentID]*agent.ModelAgent, len(AgentIDs))}

	for _, id := range AgentIDs {
		prompt, ok := opts.Prompts[id]
		if !ok {
			prompt = defaultPrompt(id)
		}

		c.agents[id] = agent.NewModelAgent(id.String(), llm, func(o *agent.ModelAgentOptions) {
			o.Instruction = agent.NewInstructionFromText(prompt)
			o.Description = description(id)
			o.EnableStreaming = opts.EnableStreaming
			o.Tools = toolsFor(id)
			o.Guardrails = opts.Guardrails
		})
	}

	return c
}

// Agent returns the definition for id.
func (c *Catalog) Agent(id AgentID) *agent.ModelAgent { return c.agents[id] }

// Lookup resolves an agent by name.
func (c *Catalog) Lookup(name string) (*agent.ModelAgent, bool) {
	id, ok := ParseAgentID(name)
	if !ok {
		return nil, false
	}
	return c.agents[id], true
}

func toolsFor(id AgentID) []tool.Tool {
	targets := HandoffTargets(id)
	names := make([]string, len(targets))
	for i, t := range targets {
		names[i] = t.String()
	}
	handoff := tool.NewHandoffTool(names...)

	switch id {
	case Triage:
		return []tool.Tool{NewClassifyIssueTool(), handoff}
	case Billing:
		return []tool.Tool{NewRefundTool(), handoff}
	case Technical:
		return []tool.Tool{NewRestartServiceTool(), handoff}
	default:
		return []tool.Tool{NewGreetTool(), handoff}
	}
}

func description(id AgentID) string {
	switch id {
	case Triage:
		return "Classifies incoming queries and routes them to a specialist."
	case Billing:
		return "Handles billing issues and refunds."
	case Technical:
		return "Handles technical problems and service restarts."
	default:
		return "Handles general inquiries and greetings."
	}
}
