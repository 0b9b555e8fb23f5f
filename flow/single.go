package flow

// SingleAgentFlow is the default flow for a support agent. It wires the
// instructions, contents and tools processors and relays model events.
type SingleAgentFlow struct{ *BaseFlow }

// NewSingleAgentFlow creates a new single-agent flow.
func NewSingleAgentFlow(agent FlowAgent) *SingleAgentFlow {
	baseFlow := NewBaseFlow(agent)

	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())
	baseFlow.AddRequestProcessor(NewToolsProcessor())

	return &SingleAgentFlow{BaseFlow: baseFlow}
}
