package core

import (
	"context"

	"github.com/hupe1980/supportmesh/logging"
)

// RunContext carries execution state & helpers for a single agent run
// (one dispatch turn). It aggregates:
//   - The ambient cancellation Context
//   - Identifiers (RunID, Agent info)
//   - The user Content that started the run
//   - The session's SupportContext, shared by reference
//   - The emission channel and the model call budget
//   - The in-run transcript (query, tool calls, tool responses)
//
// The transcript never outlives the run: nothing is remembered across turns
// except what tools write into SupportContext.
type RunContext struct {
	Context     context.Context
	RunID       string
	Agent       AgentInfo
	UserContent Content
	Support     *SupportContext
	Limiter     *ModelLimiter
	Emit        chan<- Event

	transcript []Content

	*loggerAdapter
}

// NewRunContext constructs a RunContext whose transcript starts with the
// user content.
func NewRunContext(
	ctx context.Context,
	runID string,
	agent AgentInfo,
	userContent Content,
	support *SupportContext,
	maxModelCalls int,
	emit chan<- Event,
	logger logging.Logger,
) *RunContext {
	if support == nil {
		support = NewSupportContext("", false)
	}
	return &RunContext{
		Context:       ctx,
		RunID:         runID,
		Agent:         agent,
		UserContent:   userContent,
		Support:       support,
		Limiter:       NewModelLimiter(maxModelCalls),
		Emit:          emit,
		transcript:    []Content{userContent},
		loggerAdapter: newLoggerAdapter(logger),
	}
}

// Done returns a channel closed when the underlying context is cancelled.
func (rc *RunContext) Done() <-chan struct{} { return rc.Context.Done() }

// Err returns the cancellation error (if any) from the underlying context.
func (rc *RunContext) Err() error { return rc.Context.Err() }

// Record appends the content of a completed (non-partial) event to the
// transcript so the next model call sees it.
func (rc *RunContext) Record(ev Event) {
	if ev.Content == nil || len(ev.Content.Parts) == 0 || ev.IsPartial() {
		return
	}
	rc.transcript = append(rc.transcript, *ev.Content)
}

// Transcript returns a copy of the in-run conversation.
func (rc *RunContext) Transcript() []Content {
	out := make([]Content, len(rc.transcript))
	copy(out, rc.transcript)
	return out
}
