package flow

import (
	"fmt"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/model"
)

// BaseFlow is a single-agent flow implementing the
// request -> LLM -> (optional tool loop) cycle with pluggable pre/post processors.
type BaseFlow struct {
	agent              FlowAgent
	executor           FunctionExecutor
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
}

// NewBaseFlow creates a new flow without processors.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:              agent,
		executor:           NewSequentialFunctionExecutor(FunctionExecutorConfig{}),
		requestProcessors:  []RequestProcessor{},
		responseProcessors: []ResponseProcessor{},
	}
}

// AddRequestProcessor appends a request processor; order of registration defines execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// AddResponseProcessor appends a response processor executed after each model chunk.
func (f *BaseFlow) AddResponseProcessor(processor ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, processor)
}

// SetFunctionExecutor replaces the tool executor.
func (f *BaseFlow) SetFunctionExecutor(executor FunctionExecutor) {
	f.executor = executor
}

// Execute launches the flow asynchronously and returns a channel of Events.
// The channel is closed when a final response is emitted or an unrecoverable
// error occurs.
func (f *BaseFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	eventChan := make(chan core.Event, 100)

	go func() {
		defer close(eventChan)

		for {
			last := f.runOnce(runCtx, eventChan)
			if last == nil {
				return
			}
			if len(last.GetFunctionResponses()) > 0 {
				continue
			}
			if last.IsPartial() {
				runCtx.LogWarn("flow.partial_tail", "agent", f.agent.GetName())
				return
			}
			if last.IsFinalResponse() {
				return
			}
		}
	}()

	return eventChan, nil
}

// emit records a completed event in the run transcript and forwards it.
func (f *BaseFlow) emit(runCtx *core.RunContext, eventChan chan<- core.Event, ev core.Event) error {
	runCtx.Record(ev)
	select {
	case eventChan <- ev:
		return nil
	case <-runCtx.Done():
		return runCtx.Err()
	}
}

// emitError converts an internal error to a system Event.
func (f *BaseFlow) emitError(runCtx *core.RunContext, eventChan chan<- core.Event, err error) {
	runCtx.LogError("flow.error", "agent", f.agent.GetName(), "error", err.Error())
	_ = f.emit(runCtx, eventChan, core.NewErrorEvent(runCtx.RunID, err))
}

// runOnce performs one model turn (including any tool executions) and returns
// the last emitted Event. A nil return signals termination.
func (f *BaseFlow) runOnce(runCtx *core.RunContext, eventChan chan<- core.Event) *core.Event {
	if err := runCtx.Err(); err != nil {
		f.emitError(runCtx, eventChan, err)
		return nil
	}

	if err := runCtx.Limiter.Increment(); err != nil {
		f.emitError(runCtx, eventChan, err)
		return nil
	}

	req := &model.Request{Stream: f.agent.IsStreamingEnabled()}

	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.emitError(runCtx, eventChan, fmt.Errorf("request processor %s failed: %w", processor.Name(), err))
			return nil
		}
	}

	llm := f.agent.GetLLM()

	runCtx.LogDebug(
		"flow.model.call",
		"agent", f.agent.GetName(),
		"model", llm.Info().Name,
		"call", runCtx.Limiter.Count(),
		"tools", len(req.Tools),
	)

	respCh, errCh := llm.Generate(runCtx.Context, *req)

	var lastEvent *core.Event

	for resp := range respCh {
		for _, processor := range f.responseProcessors {
			if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
				f.emitError(runCtx, eventChan, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
				return nil
			}
		}

		ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
		content := resp.Content
		ev.Content = &content
		partial := resp.Partial
		ev.Partial = &partial
		ev.Usage = resp.Usage

		if !resp.Partial && len(ev.GetFunctionCalls()) == 0 {
			complete := true
			ev.TurnComplete = &complete
		}

		lastEvent = &ev

		if err := f.emit(runCtx, eventChan, ev); err != nil {
			return nil
		}

		if ev.IsPartial() {
			continue
		}

		if fnCalls := ev.GetFunctionCalls(); len(fnCalls) > 0 {
			f.executor.Execute(runCtx, f.agent, f.agent.GetTools(), fnCalls, func(respEv core.Event) error {
				respEv.RunID = runCtx.RunID
				lastEvent = &respEv
				return f.emit(runCtx, eventChan, respEv)
			})
		}
	}

	if err, ok := <-errCh; ok && err != nil {
		f.emitError(runCtx, eventChan, fmt.Errorf("model %s: %w", llm.Info().Name, err))
		return nil
	}

	return lastEvent
}
