package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// State is the dispatch state an Outcome ended in.
type State int

const (
	StateReceived State = iota
	StateUnknown
	StateDisabled
	StateRejected
	StateFailed
	StateThrew
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "unknown"
	case StateDisabled:
		return "disabled"
	case StateRejected:
		return "rejected"
	case StateFailed:
		return "failed"
	case StateThrew:
		return "threw"
	case StateCompleted:
		return "completed"
	default:
		return "received"
	}
}

// Outcome describes how far a dispatch got. It is returned together with
// the error so adapters can log which command was attempted.
type Outcome struct {
	State   State
	Command *Command // nil until routing succeeded
	Label   string
	Args    Args // set once arguments were bound
	Result  *Result
	Elapsed time.Duration
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPrefix sets the default command prefix. Empty means every line is a
// command line.
func WithPrefix(prefix string) Option {
	return func(d *Dispatcher) { d.prefix = prefix }
}

// WithClock sets the clock used for cooldowns.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// WithMiddleware wraps every handler; the first is the outermost.
func WithMiddleware(mws ...Middleware) Option {
	return func(d *Dispatcher) { d.middleware = append(d.middleware, mws...) }
}

// Dispatcher turns raw lines into handler calls.
type Dispatcher struct {
	registry   *Registry
	types      *TypeRegistry
	evaluator  *Evaluator
	prefix     string
	now        func() time.Time
	middleware []Middleware
}

// NewDispatcher returns a dispatcher with an empty registry. The state
// argument type is registered up front.
func NewDispatcher(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: NewRegistry(),
		types:    NewTypeRegistry(),
		now:      time.Now,
	}
	_ = d.types.Register(TypeState, ResolveState)
	for _, opt := range opts {
		opt(d)
	}
	d.evaluator = NewEvaluator(d.now)
	return d
}

func (d *Dispatcher) Registry() *Registry   { return d.registry }
func (d *Dispatcher) Evaluator() *Evaluator { return d.evaluator }
func (d *Dispatcher) Prefix() string        { return d.prefix }

// RegisterArgumentType binds a custom argument type to its resolver.
func (d *Dispatcher) RegisterArgumentType(id ArgType, r TypeResolver) error {
	return d.types.Register(id, r)
}

// RegisterCommand compiles def and registers it. Every custom argument type
// it uses must already be registered.
func (d *Dispatcher) RegisterCommand(def Definition) error {
	c, err := Compile(def)
	if err != nil {
		return err
	}
	for _, t := range c.customTypes() {
		if !d.types.Has(t) {
			return &RegistrationError{Reason: UnknownType, Command: c.name, Detail: string(t)}
		}
	}
	return d.registry.Register(c)
}

// MustRegister registers every definition and panics on the first error.
// Meant for startup wiring of built-in commands.
func (d *Dispatcher) MustRegister(defs ...Definition) {
	for _, def := range defs {
		if err := d.RegisterCommand(def); err != nil {
			panic(err)
		}
	}
}

// UnregisterCommand removes a top-level command by name or alias.
func (d *Dispatcher) UnregisterCommand(name string) bool {
	return d.registry.Unregister(name)
}

// StripPrefix removes the active prefix from line.
func (d *Dispatcher) StripPrefix(line string, inv *Invocation) (string, bool) {
	prefix := d.prefix
	if inv != nil && inv.Prefix != "" {
		prefix = inv.Prefix
	}
	line = strings.TrimLeft(line, " \t\r\n")
	if prefix == "" {
		return line, true
	}
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return line[len(prefix):], true
}

// Dispatch runs one line. It returns ErrNoPrefix for lines that are not
// commands, a DispatchError for any failure, and nil once the handler
// completed. Outcome is never nil.
func (d *Dispatcher) Dispatch(ctx context.Context, line string, inv *Invocation) (*Outcome, error) {
	start := d.now()
	out := &Outcome{State: StateReceived}
	defer func() { out.Elapsed = d.now().Sub(start) }()

	if inv == nil {
		inv = &Invocation{}
	}

	body, ok := d.StripPrefix(line, inv)
	if !ok {
		return out, ErrNoPrefix
	}

	tokens := Lex(body)
	texts := make([]string, len(tokens))
	for i, t := range tokens {
		texts[i] = t.Text
	}

	c, consumed := d.registry.ResolveChain(texts)
	if c == nil {
		out.State = StateUnknown
		token := ""
		if len(texts) > 0 {
			token = texts[0]
		}
		return out, &UnknownCommandError{Token: token, Suggestion: d.registry.Suggest(token)}
	}
	out.Command = c
	out.Label = texts[consumed-1]

	if !c.Runnable() {
		out.State = StateUnknown
		token := ""
		if consumed < len(texts) {
			token = texts[consumed]
		}
		return out, &UnknownSubcommandError{Parent: c.Path(), Token: token}
	}

	if c.enabled != nil && !c.enabled(ctx, inv) {
		out.State = StateDisabled
		return out, &CommandDisabledError{Command: c.Path()}
	}

	if err := d.evaluator.Evaluate(ctx, c, inv); err != nil {
		out.State = StateRejected
		return out, err
	}

	args, err := d.types.Resolve(ctx, Classify(tokens[consumed:], c.args), c.args, c.singleArg, inv)
	if err != nil {
		out.State = StateFailed
		return out, err
	}
	out.Args = args

	call := &Call{
		Invocation: inv,
		Command:    c,
		Label:      out.Label,
		Args:       args,
		Remainder:  strings.TrimSpace(body[tokens[consumed-1].End:]),
	}
	res, err := d.invoke(ctx, Apply(c.handler, d.middleware...), call)
	if err != nil {
		out.State = StateThrew
		return out, &HandlerError{Command: c.Path(), Cause: err}
	}
	if res == nil {
		res = OK()
	}
	out.State = StateCompleted
	out.Result = res
	return out, nil
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, call *Call) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	return h(ctx, call)
}
