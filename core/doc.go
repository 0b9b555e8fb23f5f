// Package core provides the foundational domain types and execution contexts
// used by supportmesh:
//
//   - SupportContext (the per-session record shared with tools and guardrails)
//   - Agents (units of model-driven work) and their identity
//   - Events, Content and Parts (the run's communication records)
//   - RunContext / ToolContext (scoped execution for one turn and one tool call)
//   - ModelLimiter (per-run model call budget)
//
// Concrete agents, flows and model adapters live in their own packages and
// depend on these small types only.
package core
