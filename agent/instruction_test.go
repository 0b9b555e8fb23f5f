package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

type mockProvider struct {
	text string
	err  error
}

func (m mockProvider) Instruction(*core.RunContext) (string, error) { return m.text, m.err }

func newTestRunContext() *core.RunContext {
	return core.NewRunContext(
		context.Background(),
		"run-id",
		core.AgentInfo{Name: "TestAgent", Type: "test"},
		core.NewTextContent(core.RoleUser, "hello"),
		core.NewSupportContext("Ada", true),
		4,
		make(chan core.Event, 16),
		logging.NoOpLogger{},
	)
}

func TestInstruction_Static(t *testing.T) {
	inst := NewInstructionFromText("static instruction")
	if !inst.IsStatic() {
		t.Fatalf("expected static instruction")
	}
	got, err := inst.Resolve(newTestRunContext())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "static instruction" {
		t.Fatalf("expected 'static instruction', got %q", got)
	}
}

func TestInstruction_Provider(t *testing.T) {
	inst := NewInstructionFromProvider(mockProvider{text: "dynamic"})
	if inst.IsStatic() {
		t.Fatalf("expected dynamic instruction")
	}
	got, err := inst.Resolve(newTestRunContext())
	if err != nil || got != "dynamic" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}

func TestInstruction_ProviderError(t *testing.T) {
	wantErr := errors.New("boom")
	inst := NewInstructionFromProvider(mockProvider{err: wantErr})
	if _, err := inst.Resolve(newTestRunContext()); !errors.Is(err, wantErr) {
		t.Fatalf("expected provider error, got %v", err)
	}
}

func TestInstruction_Func(t *testing.T) {
	inst := NewInstructionFromFunc(func(rc *core.RunContext) (string, error) {
		return "Hello " + rc.Support.UserName, nil
	})
	got, err := inst.Resolve(newTestRunContext())
	if err != nil || got != "Hello Ada" {
		t.Fatalf("unexpected result %q, %v", got, err)
	}
}
