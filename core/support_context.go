package core

import "strings"

// DefaultUserName replaces an empty name at session start.
const DefaultUserName = "User"

// SupportContext is the per-session mutable record shared by reference with
// every agent run, tool call and guardrail check. The dispatch loop owns it;
// it is only touched from within a single in-flight turn, so it carries no lock.
type SupportContext struct {
	UserName      string `json:"user_name"`
	IsPremiumUser bool   `json:"is_premium_user"`
	IssueType     string `json:"issue_type"`
}

// NewSupportContext builds the session record from console input. An empty
// (or whitespace-only) name falls back to DefaultUserName.
func NewSupportContext(name string, premium bool) *SupportContext {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultUserName
	}
	return &SupportContext{UserName: name, IsPremiumUser: premium}
}

// State exposes the record as template data for instruction rendering.
func (sc *SupportContext) State() map[string]any {
	if sc == nil {
		return map[string]any{}
	}
	return map[string]any{
		"user_name":       sc.UserName,
		"is_premium_user": sc.IsPremiumUser,
		"issue_type":      sc.IssueType,
	}
}
