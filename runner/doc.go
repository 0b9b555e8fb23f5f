// Package runner executes a single agent turn.
//
// A Runner creates the per-run core.RunContext (run ID, user content, the
// session's SupportContext and the model-call budget), starts the agent,
// streams its events and applies their actions. Run is the synchronous
// helper used by the desk: it drains the event stream and returns a Result
// carrying the final output, any structured handoff and token usage.
//
// Active runs can be cancelled by ID; cancelling the caller's context has
// the same effect.
package runner
