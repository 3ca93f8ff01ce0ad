package scxml

import "context"

// Action is executable content attached to a state's <onentry>/<onexit>
// block. spec.md §9 open question (a) abstracts action execution to a
// pluggable collaborator; Action gives that collaborator something
// concrete to execute, grounded in the teacher's own Raise/Log executable
// content shapes, without pulling in full datamodel scripting.
type Action interface {
	isAction()
}

// RaiseAction raises an internal event (SCXML 6.4), pushed onto the
// interpreter's internal queue for FIFO draining before the next external
// event or eventless microstep (spec.md §5).
type RaiseAction struct {
	Event string
}

func (RaiseAction) isAction() {}

// LogAction emits a diagnostic/debug message (SCXML 5.11) via the host's
// Logger collaborator; it never affects the configuration.
type LogAction struct {
	Label string
	Expr  string
}

func (LogAction) isAction() {}

// Logger is the minimal collaborator LogAction executes against. A host
// may supply one via interpreter.Options; the default is a no-op.
type Logger interface {
	Log(ctx context.Context, label, message string)
}

// ActionExecutor runs one Action during onentry/onexit processing (§9a).
// raise is how the executor enqueues a RaiseAction's event onto the
// internal queue; the interpreter supplies the closure so this package
// stays free of interpreter-internal queue state.
type ActionExecutor interface {
	Execute(ctx context.Context, action Action, raise func(eventName string)) error
}

// DefaultActionExecutor implements RaiseAction (via the supplied raise
// closure) and LogAction (via Logger, defaulting to a no-op if nil).
type DefaultActionExecutor struct {
	Logger Logger
}

func (e DefaultActionExecutor) Execute(ctx context.Context, action Action, raise func(eventName string)) error {
	switch a := action.(type) {
	case RaiseAction:
		if raise != nil {
			raise(a.Event)
		}
	case LogAction:
		if e.Logger != nil {
			e.Logger.Log(ctx, a.Label, a.Expr)
		}
	}
	return nil
}
