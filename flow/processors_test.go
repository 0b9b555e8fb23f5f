package flow

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
	"github.com/hupe1980/supportmesh/tool"
)

type instrAgent struct {
	teAgent
	instructions string
	err          error
}

func (a *instrAgent) ResolveInstructions(*core.RunContext) (string, error) {
	return a.instructions, a.err
}

func TestProcessorNames(t *testing.T) {
	if NewInstructionsProcessor().Name() != "instructions" {
		t.Errorf("expected name 'instructions'")
	}
	if NewContentsProcessor().Name() != "contents" {
		t.Errorf("expected name 'contents'")
	}
	if NewToolsProcessor().Name() != "tools" {
		t.Errorf("expected name 'tools'")
	}
}

func TestInstructionsProcessor_RendersSupportContext(t *testing.T) {
	rc := newTERunContext(context.Background())
	rc.Support.IssueType = "billing"
	a := &instrAgent{instructions: "User {{.user_name}} premium={{.is_premium_user}} issue={{.issue_type}}"}

	req := &model.Request{}
	if err := NewInstructionsProcessor().ProcessRequest(rc, req, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Instructions != "User Ada premium=false issue=billing" {
		t.Fatalf("unexpected instructions: %q", req.Instructions)
	}
}

func TestInstructionsProcessor_Errors(t *testing.T) {
	rc := newTERunContext(context.Background())
	if err := NewInstructionsProcessor().ProcessRequest(rc, &model.Request{}, &instrAgent{err: errors.New("x")}); err == nil {
		t.Fatal("expected resolve error")
	}
	if err := NewInstructionsProcessor().ProcessRequest(rc, &model.Request{}, &instrAgent{instructions: "{{.broken"}); err == nil {
		t.Fatal("expected template error")
	}
}

func TestContentsProcessor_UsesTranscript(t *testing.T) {
	rc := newTERunContext(context.Background())
	rc.Record(core.NewFunctionCallEvent("agent", "greet", "{}"))

	req := &model.Request{}
	if err := NewContentsProcessor().ProcessRequest(rc, req, &teAgent{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Contents) != 2 || req.Contents[0].Role != core.RoleUser {
		t.Fatalf("unexpected contents: %+v", req.Contents)
	}
}

func TestToolsProcessor_SortedDefinitions(t *testing.T) {
	a := &teAgent{tools: map[string]tool.Tool{
		"refund":  &teMockTool{name: "refund"},
		"handoff": &teMockTool{name: "handoff"},
		"greet":   &teMockTool{name: "greet"},
	}}
	req := &model.Request{}
	if err := NewToolsProcessor().ProcessRequest(nil, req, a); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"greet", "handoff", "refund"}
	if len(req.Tools) != len(want) {
		t.Fatalf("expected %d tools got %d", len(want), len(req.Tools))
	}
	for i, name := range want {
		if req.Tools[i].Function.Name != name || req.Tools[i].Type != "function" {
			t.Fatalf("tool %d: got %+v", i, req.Tools[i])
		}
	}

	empty := &model.Request{}
	_ = NewToolsProcessor().ProcessRequest(nil, empty, &teAgent{})
	if empty.Tools != nil {
		t.Fatalf("expected no tools")
	}
}
