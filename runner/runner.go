package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/logging"
)

// ErrNoFinalResponse is returned when a run ends without a final agent reply.
var ErrNoFinalResponse = errors.New("agent produced no final response")

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// EventBufferSize sets channel buffering for events.
	EventBufferSize int
	// MaxModelCalls limits the number of model calls per run (0 = unlimited).
	MaxModelCalls int
	// Logger receives runner diagnostics.
	Logger logging.Logger
}

// Result summarizes a completed run.
type Result struct {
	RunID string
	// Agent is the name of the agent that ran.
	Agent string
	// Output is the text of the final response.
	Output string
	// Handoff names the agent requested through the handoff tool, if any.
	Handoff string
	// Events holds every non-partial event in emission order.
	Events []core.Event
	// Usage accumulates the token usage reported by the model.
	Usage core.TokenUsage
	// ModelCalls counts the model invocations made during the run.
	ModelCalls int
}

// Runner executes one agent turn at a time against a shared SupportContext:
// it creates the run context, streams the agent's events, applies their
// actions and tracks active runs for cancellation. Public methods are safe
// for concurrent use.
type Runner struct {
	eventBufferSize int
	maxModelCalls   int
	logger          logging.Logger

	activeRuns map[string]context.CancelFunc
	mu         sync.RWMutex
}

// New constructs a Runner with optional overrides.
func New(optFns ...func(o *Options)) *Runner {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   8,
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	return &Runner{
		eventBufferSize: opts.EventBufferSize,
		maxModelCalls:   opts.MaxModelCalls,
		logger:          opts.Logger,
		activeRuns:      make(map[string]context.CancelFunc),
	}
}

// Start launches an asynchronous run of agent for input. Events are
// delivered on the returned channel, which is closed once the agent returns;
// a terminal agent error (if any) is delivered on the error channel.
func (r *Runner) Start(
	ctx context.Context,
	agent core.Agent,
	input string,
	sc *core.SupportContext,
) (string, <-chan core.Event, <-chan error) {
	agentEmit := make(chan core.Event, r.eventBufferSize)
	runCtx := r.newRunContext(ctx, agent, input, sc, agentEmit)
	eventsCh, errorsCh := r.launch(agent, runCtx, agentEmit)
	return runCtx.RunID, eventsCh, errorsCh
}

// Run executes agent synchronously and summarizes the run. Error events
// emitted by the flow become the returned error; a run that ends without a
// final response returns ErrNoFinalResponse. The partial Result is returned
// alongside any error.
func (r *Runner) Run(
	ctx context.Context,
	agent core.Agent,
	input string,
	sc *core.SupportContext,
) (*Result, error) {
	runID, eventsCh, errorsCh := r.Start(ctx, agent, input, sc)

	res := &Result{RunID: runID, Agent: agent.Name()}

	var (
		runErr error
		final  bool
	)

	for ev := range eventsCh {
		if ev.IsPartial() {
			continue
		}

		res.Events = append(res.Events, ev)
		res.Usage.Add(ev.Usage)

		if ev.IsError() {
			if runErr == nil {
				runErr = eventError(ctx, ev)
			}
			continue
		}

		if t := ev.Actions.TransferToAgent; t != nil && *t != "" {
			res.Handoff = *t
		}

		if ev.IsFinalResponse() && ev.Author == agent.Name() {
			res.Output = ev.Text()
			final = true
		}
	}

	if err, ok := <-errorsCh; ok && err != nil && runErr == nil {
		runErr = err
	}

	res.ModelCalls = countModelCalls(res.Events)

	r.logger.Debug(
		"runner.run.complete",
		"run", res.RunID,
		"agent", res.Agent,
		"events", len(res.Events),
		"model_calls", res.ModelCalls,
		"handoff", res.Handoff,
		"total_tokens", res.Usage.TotalTokens,
	)

	if runErr != nil {
		return res, fmt.Errorf("run %s: %w", res.RunID, runErr)
	}

	if !final {
		return res, ErrNoFinalResponse
	}

	return res, nil
}

// cancelRun cancels an in-flight run by ID.
func (r *Runner) cancelRun(runID string) error {
	r.mu.Lock()
	cancel, exists := r.activeRuns[runID]
	r.mu.Unlock()

	if !exists {
		return fmt.Errorf("run %s not found", runID)
	}

	cancel()

	return nil
}

// activeRunCount reports the number of runs currently in flight.
func (r *Runner) activeRunCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activeRuns)
}

func (r *Runner) newRunContext(
	ctx context.Context,
	agent core.Agent,
	input string,
	sc *core.SupportContext,
	emit chan<- core.Event,
) *core.RunContext {
	runID := core.NewID()

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.activeRuns[runID] = cancel
	r.mu.Unlock()

	return core.NewRunContext(
		ctx,
		runID,
		core.AgentInfo{Name: agent.Name(), Type: "model"},
		core.NewTextContent(core.RoleUser, input),
		sc,
		r.maxModelCalls,
		emit,
		r.logger,
	)
}

// launch runs the agent and pipes its emission channel through
// processEvents. agentEmit is closed when the agent returns.
func (r *Runner) launch(agent core.Agent, runCtx *core.RunContext, agentEmit chan core.Event) (<-chan core.Event, <-chan error) {
	eventsCh := make(chan core.Event, r.eventBufferSize)
	errorsCh := make(chan error, 1)

	r.logger.Info("runner.run.start", "run", runCtx.RunID, "agent", agent.Name())

	go func() {
		defer close(agentEmit)

		if err := agent.Run(runCtx); err != nil {
			r.logger.Error("runner.agent.error", "run", runCtx.RunID, "agent", agent.Name(), "error", err.Error())
			errorsCh <- fmt.Errorf("agent execution failed: %w", err)
		}
	}()

	go func() {
		defer func() {
			r.finish(runCtx.RunID)
			close(eventsCh)
			close(errorsCh)
		}()

		r.processEvents(runCtx, agentEmit, eventsCh)
	}()

	return eventsCh, errorsCh
}

func (r *Runner) finish(runID string) {
	r.mu.Lock()
	cancel, ok := r.activeRuns[runID]
	delete(r.activeRuns, runID)
	r.mu.Unlock()

	if ok {
		cancel()
	}
}

func (r *Runner) processEvents(runCtx *core.RunContext, agentEmit <-chan core.Event, eventsCh chan<- core.Event) {
	for ev := range agentEmit {
		r.applyEventActions(runCtx, ev)

		select {
		case eventsCh <- ev:
		case <-runCtx.Done():
			// keep draining so the agent goroutine can finish
			r.logger.Debug("runner.event.dropped", "run", runCtx.RunID, "event_id", ev.ID)
		}
	}
}

func (r *Runner) applyEventActions(runCtx *core.RunContext, ev core.Event) {
	if len(ev.Actions.StateDelta) > 0 {
		r.logger.Debug("runner.event.state_delta", "run", runCtx.RunID, "delta", ev.Actions.StateDelta)
	}

	if t := ev.Actions.TransferToAgent; t != nil && *t != "" {
		r.logger.Debug("runner.event.transfer_to_agent", "run", runCtx.RunID, "target", *t)
	}
}

// eventError converts an error event into an error. Cancellation of the
// caller's context and the model-call limit keep their sentinels.
func eventError(ctx context.Context, ev core.Event) error {
	msg := *ev.ErrorMessage
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.HasPrefix(msg, core.ErrModelCallLimit.Error()) {
		return fmt.Errorf("%w%s", core.ErrModelCallLimit, strings.TrimPrefix(msg, core.ErrModelCallLimit.Error()))
	}
	return errors.New(msg)
}

// countModelCalls counts completed model responses: events that are neither
// tool responses nor errors.
func countModelCalls(events []core.Event) int {
	n := 0
	for _, ev := range events {
		if ev.Content != nil && ev.Content.Role == core.RoleAssistant && !ev.IsError() {
			n++
		}
	}
	return n
}
