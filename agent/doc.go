// Package agent contains the model-backed support agent used by every role in
// the desk (triage, billing, technical, general).
//
// A ModelAgent binds a model, a system prompt (Instruction), a subset of tools
// and the output guardrails that the dispatch loop evaluates on its final
// answer. Its Run method executes the single-agent flow and forwards the
// resulting events to the RunContext emission channel.
//
// BaseAgent carries the identity shared by agents; embed it and implement Run
// to satisfy core.Agent.
package agent
