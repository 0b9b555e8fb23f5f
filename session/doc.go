// Package session records what happened in a console session, one entry per
// completed turn. The record is an audit trail for the caller; it is never fed
// back to the agents, which see only the current query.
//
// Add other backends in sub‑packages without changing calling code; only the
// wiring layer decides which Store to instantiate.
package session
