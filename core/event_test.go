package core

import (
	"errors"
	"testing"
)

// Event constructor & helper method tests
func TestEvent_ConstructorsAndMethods(t *testing.T) {
	e := NewEvent("run-123", "authorA")
	if e.Author != "authorA" || e.RunID != "run-123" || e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("NewEvent did not initialize fields correctly: %+v", e)
	}

	msg := NewMessageEvent("agent1", "hello world")
	if msg.Content == nil || msg.Content.Role != RoleAssistant || msg.Text() != "hello world" {
		t.Fatalf("NewMessageEvent malformed: %+v", msg)
	}

	user := NewUserMessageEvent("run-1", "hi")
	if user.Content == nil || user.Content.Role != RoleUser || user.Author != RoleUser {
		t.Fatalf("NewUserMessageEvent malformed: %+v", user)
	}

	fCall := NewFunctionCallEvent("agent2", "refund", `{"amount":"10"}`)
	calls := fCall.GetFunctionCalls()
	if len(calls) != 1 || calls[0].Name != "refund" || calls[0].Arguments != `{"amount":"10"}` {
		t.Fatalf("GetFunctionCalls extraction failed: %+v", calls)
	}

	fRespOK := NewFunctionResponseEvent("agent2", "call-1", "refund", "ok", nil)
	resps := fRespOK.GetFunctionResponses()
	if len(resps) != 1 || resps[0].Response.(string) != "ok" || resps[0].Error != "" {
		t.Fatalf("Function response success extraction failed: %+v", resps)
	}

	fRespErr := NewFunctionResponseEvent("agent2", "call-2", "refund", nil, errors.New("boom"))
	resps = fRespErr.GetFunctionResponses()
	if resps[0].Error != "boom" {
		t.Fatalf("Expected error message in function response: %+v", resps[0])
	}

	errEv := NewErrorEvent("run-1", errors.New("api down"))
	if !errEv.IsError() || *errEv.ErrorMessage != "api down" || errEv.Author != RoleSystem {
		t.Fatalf("NewErrorEvent malformed: %+v", errEv)
	}
}

func TestEvent_IsFinalResponseLogic(t *testing.T) {
	if !NewMessageEvent("agent", "done").IsFinalResponse() {
		t.Error("Expected plain message event to be final")
	}

	partial := true
	e2 := NewMessageEvent("agent", "d")
	e2.Partial = &partial
	if e2.IsFinalResponse() {
		t.Error("Partial event should not be final")
	}

	if NewFunctionCallEvent("agent", "f", "").IsFinalResponse() {
		t.Error("Event with function call should not be final")
	}

	if NewFunctionResponseEvent("agent", "call-3", "f", "ok", nil).IsFinalResponse() {
		t.Error("Event with function response should not be final")
	}

	if NewErrorEvent("run", errors.New("x")).IsFinalResponse() {
		t.Error("Error event should not be final")
	}
}

func TestEvent_IDUniqueness(t *testing.T) {
	if NewID() == NewID() {
		t.Error("Expected unique IDs")
	}
}

func TestContent_Text(t *testing.T) {
	c := Content{Role: RoleAssistant, Parts: []Part{
		TextPart{Text: "I can't process that. "},
		FunctionCallPart{FunctionCall: FunctionCall{Name: "handoff"}},
		TextPart{Text: "HANDOFF BillingAgent"},
	}}
	if got := c.Text(); got != "I can't process that. HANDOFF BillingAgent" {
		t.Fatalf("unexpected text: %q", got)
	}
}
