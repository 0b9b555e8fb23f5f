package core

// Agent defines the interface every agent in supportmesh implements.
//
// Agents receive their input through a RunContext, emit events describing
// model output and tool traffic on RunContext.Emit, and return once their
// turn is complete. Implementations must respect context cancellation.
type Agent interface {
	Name() string
	Description() string
	Run(runCtx *RunContext) error
}

// AgentInfo carries identifying details about an agent used in contexts & events.
// Name is the external identifier; Type categorizes implementation (e.g. "model").
type AgentInfo struct{ Name, Type string }
