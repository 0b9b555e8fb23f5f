package testutil

import (
	"context"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// RunContextBuilder helps construct run contexts with fluent chaining.
// Example:
//
//	rc := NewRunContextBuilder().Agent("BillingAgent").Support("Ada", true).Build()
type RunContextBuilder struct {
	ctx      context.Context
	runID    string
	agent    string
	query    string
	support  *core.SupportContext
	maxCalls int
	emit     chan<- core.Event
	logger   logging.Logger
}

// NewRunContextBuilder creates a builder with a background context, a
// non-premium "User" and a buffered emission channel.
func NewRunContextBuilder() *RunContextBuilder {
	return &RunContextBuilder{
		ctx:    context.Background(),
		runID:  "run",
		agent:  "agent",
		query:  "msg",
		logger: logging.NoOpLogger{},
	}
}

// Context sets the ambient context (chainable).
func (b *RunContextBuilder) Context(ctx context.Context) *RunContextBuilder { b.ctx = ctx; return b }

// RunID sets the run ID (chainable).
func (b *RunContextBuilder) RunID(id string) *RunContextBuilder { b.runID = id; return b }

// Agent sets the running agent's name (chainable).
func (b *RunContextBuilder) Agent(name string) *RunContextBuilder { b.agent = name; return b }

// Query sets the user text that starts the run (chainable).
func (b *RunContextBuilder) Query(q string) *RunContextBuilder { b.query = q; return b }

// Support sets the session context (chainable).
func (b *RunContextBuilder) Support(name string, premium bool) *RunContextBuilder {
	b.support = core.NewSupportContext(name, premium)
	return b
}

// SupportContext shares an existing session context (chainable).
func (b *RunContextBuilder) SupportContext(sc *core.SupportContext) *RunContextBuilder {
	b.support = sc
	return b
}

// MaxModelCalls sets the model call budget (chainable).
func (b *RunContextBuilder) MaxModelCalls(n int) *RunContextBuilder { b.maxCalls = n; return b }

// Emit sets the emission channel (chainable).
func (b *RunContextBuilder) Emit(ch chan<- core.Event) *RunContextBuilder { b.emit = ch; return b }

// Logger sets the logger (chainable).
func (b *RunContextBuilder) Logger(l logging.Logger) *RunContextBuilder { b.logger = l; return b }

// Build returns the *core.RunContext.
func (b *RunContextBuilder) Build() *core.RunContext {
	emit := b.emit
	if emit == nil {
		emit = make(chan core.Event, 100)
	}
	return core.NewRunContext(
		b.ctx,
		b.runID,
		core.AgentInfo{Name: b.agent, Type: "model"},
		core.NewTextContent(core.RoleUser, b.query),
		b.support,
		b.maxCalls,
		emit,
		b.logger,
	)
}

// ToolContext builds a run context and derives a tool context for callID.
func (b *RunContextBuilder) ToolContext(callID string) *core.ToolContext {
	return core.NewToolContext(b.Build(), callID)
}
