package desk

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/hupe1980/supportmesh/core"
	"github.com/hupe1980/supportmesh/guardrail"
	"github.com/hupe1980/supportmesh/logging"
	"github.com/hupe1980/supportmesh/runner"
	"github.com/hupe1980/supportmesh/session"
	"github.com/hupe1980/supportmesh/support"
)

// Console strings.
const (
	WelcomeMessage  = "✅ Welcome to Support Agent. Type 'exit' to quit."
	NamePrompt      = "Enter your name: "
	PremiumPrompt   = "Are you a premium user? (yes/no): "
	ResponseHeader  = "\n🤖 Agent Response:"
	FarewellMessage = "👋 Goodbye!"
)

// MaxLineSize bounds a single console input line. Longer lines are reported
// and skipped.
const MaxLineSize = 64 * 1024

// ErrLineTooLong reports an input line over MaxLineSize.
var ErrLineTooLong = errors.New("input line too long")

// AgentRunner executes one agent turn. *runner.Runner implements it.
type AgentRunner interface {
	Run(ctx context.Context, agent core.Agent, input string, sc *core.SupportContext) (*runner.Result, error)
}

// Options configures a Session.
type Options struct {
	// Policy enforces tripped guardrails. Defaults to PolicyBlock.
	Policy Policy
	// MaxRetries bounds PolicyRetry re-runs per turn.
	MaxRetries int
	// FailFast ends the session on the first agent error.
	FailFast bool
	// RequestTimeout bounds a single agent run (0 = none).
	RequestTimeout time.Duration
	// Support presets the session context and skips the name and premium
	// prompts.
	Support *core.SupportContext
	// History records completed turns (defaults to an in-memory store).
	History session.Store
	// Logger receives turn diagnostics.
	Logger logging.Logger
}

// Session is the console dispatch loop. It owns the SupportContext and the
// current agent, and serializes turns.
type Session struct {
	id      string
	catalog *support.Catalog
	runner  AgentRunner
	in      io.Reader
	out     io.Writer
	opts    Options
	logger  logging.Logger

	lines   <-chan inputLine
	sc      *core.SupportContext
	current support.AgentID
}

// New constructs a Session reading from in and writing to out.
func New(
	catalog *support.Catalog,
	r AgentRunner,
	in io.Reader,
	out io.Writer,
	optFns ...func(o *Options),
) (*Session, error) {
	opts := Options{
		Policy:     PolicyBlock,
		MaxRetries: 1,
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	if opts.History == nil {
		opts.History = session.NewInMemoryStore()
	}

	policy, err := ParsePolicy(string(opts.Policy))
	if err != nil {
		return nil, err
	}
	opts.Policy = policy

	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}

	return &Session{
		id:      id,
		catalog: catalog,
		runner:  r,
		in:      in,
		out:     out,
		opts:    opts,
		logger:  opts.Logger,
		sc:      opts.Support,
		current: support.Triage,
	}, nil
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Current returns the agent that will handle the next query.
func (s *Session) Current() support.AgentID { return s.current }

// Support returns the session context (nil before the identity prompts).
func (s *Session) Support() *core.SupportContext { return s.sc }

// History returns the completed turns in order.
func (s *Session) History() ([]session.Turn, error) { return s.opts.History.History(s.id) }

// Run drives the console session until exit, quit, end of input, a read
// error or context cancellation. Exit, quit and EOF end the session cleanly
// with a nil error.
func (s *Session) Run(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)

	s.lines = scanLines(s.in, done)

	s.println(WelcomeMessage)

	if s.sc == nil {
		name, err := s.prompt(ctx, NamePrompt)
		if err != nil {
			return s.end(err)
		}
		premium, err := s.prompt(ctx, PremiumPrompt)
		if err != nil {
			return s.end(err)
		}
		s.sc = core.NewSupportContext(name, strings.ToLower(strings.TrimSpace(premium)) == "yes")
	}

	s.logger.Info(
		"desk.session.start",
		"session", s.id,
		"user", s.sc.UserName,
		"premium", s.sc.IsPremiumUser,
		"policy", string(s.opts.Policy),
	)

	for {
		line, err := s.prompt(ctx, s.sc.UserName+": ")
		if err != nil {
			return s.end(err)
		}

		query := strings.TrimSpace(line)
		if IsExit(query) {
			s.println(FarewellMessage)
			s.logger.Info("desk.session.exit", "session", s.id)
			return nil
		}
		if query == "" {
			continue
		}

		if _, err := s.Turn(ctx, query); err != nil {
			return err
		}
	}
}

// IsExit reports whether query ends the session.
func IsExit(query string) bool {
	q := strings.TrimSpace(query)
	return strings.EqualFold(q, "exit") || strings.EqualFold(q, "quit")
}

// Turn runs query against the current agent, enforces the guardrail policy,
// prints the response and advances the state machine. An agent error leaves
// the current agent unchanged and yields a zero Reply; it is returned only
// when FailFast is set.
func (s *Session) Turn(ctx context.Context, query string) (Reply, error) {
	if s.sc == nil {
		s.sc = core.NewSupportContext("", false)
	}

	a := s.catalog.Agent(s.current)
	if a == nil {
		return Reply{}, fmt.Errorf("%w: %s", ErrUnknownAgent, s.current)
	}

	start := time.Now()

	var (
		res     *runner.Result
		tripped []guardrail.Result
		input   = query
	)

	for attempt := 0; ; attempt++ {
		var err error

		res, err = s.run(ctx, a, input)
		if err != nil {
			s.logger.Error("desk.turn.error", "session", s.id, "agent", a.Name(), "error", err.Error())
			s.printf("⚠️  Agent error: %v\n", err)

			if s.opts.FailFast {
				return Reply{}, fmt.Errorf("agent %s: %w", a.Name(), err)
			}

			return Reply{}, nil
		}

		tripped = guardrail.Tripped(guardrail.Evaluate(ctx, a.Guardrails(), s.sc, res.Output))
		if len(tripped) == 0 || s.opts.Policy != PolicyRetry || attempt >= s.opts.MaxRetries {
			break
		}

		s.logger.Warn(
			"desk.guardrail.retry",
			"session", s.id,
			"agent", a.Name(),
			"attempt", attempt+1,
			"guardrails", guardrailNames(tripped),
		)
		input = query + fmt.Sprintf(correctiveNote, guardrailNames(tripped))
	}

	reply := Resolve(res)

	s.println(ResponseHeader)
	s.render(reply, tripped)

	prev := s.current
	s.current = reply.Next()

	if err := s.opts.History.Append(s.id, session.Turn{
		Query:      query,
		Agent:      prev.String(),
		Next:       s.current.String(),
		Kind:       reply.Kind.String(),
		Reply:      reply.Text,
		Structured: reply.Structured,
		Tripped:    len(tripped) > 0,
		Usage:      res.Usage,
	}); err != nil {
		s.logger.Warn("desk.history.append.error", "session", s.id, "error", err.Error())
	}

	s.logger.Info(
		"desk.turn.complete",
		"session", s.id,
		"agent", prev.String(),
		"next", s.current.String(),
		"kind", reply.Kind.String(),
		"structured", reply.Structured,
		"tripped", len(tripped) > 0,
		"model_calls", res.ModelCalls,
		"total_tokens", res.Usage.TotalTokens,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return reply, nil
}

func (s *Session) run(ctx context.Context, a core.Agent, input string) (*runner.Result, error) {
	if s.opts.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.RequestTimeout)
		defer cancel()
	}
	return s.runner.Run(ctx, a, input, s.sc)
}

func (s *Session) render(reply Reply, tripped []guardrail.Result) {
	if len(tripped) == 0 {
		s.println(reply.Text)
		return
	}

	names := guardrailNames(tripped)
	s.logger.Warn("desk.guardrail.tripped", "session", s.id, "guardrails", names, "policy", string(s.opts.Policy))

	if s.opts.Policy == PolicyWarn {
		s.println(reply.Text)
		s.printf("⚠️  Guardrail triggered: %s\n", names)
		return
	}

	s.printf("🚫 Response withheld by guardrail: %s\n", names)
}

// prompt writes p and waits for the next input line. Over-long lines are
// reported and the prompt is repeated; read failures are returned.
func (s *Session) prompt(ctx context.Context, p string) (string, error) {
	for {
		s.printf("%s", p)

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case in, ok := <-s.lines:
			if !ok {
				return "", io.EOF
			}
			if errors.Is(in.err, ErrLineTooLong) {
				s.logger.Warn("desk.input.too_long", "session", s.id, "max_bytes", MaxLineSize)
				s.printf("⚠️  Input ignored: %v\n", in.err)
				continue
			}
			if in.err != nil {
				return "", fmt.Errorf("read input: %w", in.err)
			}
			return in.text, nil
		}
	}
}

// end maps the reason a prompt failed to the session result.
func (s *Session) end(err error) error {
	if errors.Is(err, io.EOF) {
		s.println("")
		s.println(FarewellMessage)
		s.logger.Info("desk.session.eof", "session", s.id)
		return nil
	}
	s.logger.Warn("desk.session.end", "session", s.id, "error", err.Error())
	return err
}

func (s *Session) println(line string) { _, _ = fmt.Fprintln(s.out, line) }

func (s *Session) printf(format string, args ...any) { _, _ = fmt.Fprintf(s.out, format, args...) }

func guardrailNames(results []guardrail.Result) string {
	names := make([]string, len(results))
	for i, r := range results {
		names[i] = r.Guardrail
	}
	return strings.Join(names, ", ")
}

type inputLine struct {
	text string
	err  error
}

// scanLines streams lines from r until EOF, a read error or done is closed.
// A read error is delivered before the channel closes. A read blocked on the
// console outlives the session.
func scanLines(r io.Reader, done <-chan struct{}) <-chan inputLine {
	lines := make(chan inputLine)
	go func() {
		defer close(lines)

		send := func(in inputLine) bool {
			select {
			case lines <- in:
				return true
			case <-done:
				return false
			}
		}

		br := bufio.NewReader(r)
		for {
			text, err := readLine(br)
			switch {
			case err == nil:
				if !send(inputLine{text: text}) {
					return
				}
			case errors.Is(err, ErrLineTooLong):
				if !send(inputLine{err: err}) {
					return
				}
			case errors.Is(err, io.EOF):
				return
			default:
				send(inputLine{err: err})
				return
			}
		}
	}()
	return lines
}

// readLine returns the next line without its terminator. A line over
// MaxLineSize is consumed in full and reported as ErrLineTooLong.
func readLine(br *bufio.Reader) (string, error) {
	var (
		buf     []byte
		tooLong bool
	)

	for {
		chunk, isPrefix, err := br.ReadLine()
		if err != nil {
			return "", err
		}

		if !tooLong {
			if len(buf)+len(chunk) > MaxLineSize {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}

		if !isPrefix {
			break
		}
	}

	if tooLong {
		return "", fmt.Errorf("%w (max %d bytes)", ErrLineTooLong, MaxLineSize)
	}

	return string(buf), nil
}
