// Package interpreter implements the microstep/macrostep engine of
// spec.md §4.3-§4.13: selecting and firing transitions, computing exit and
// entry sets via the LCCA, and iterating eventless transitions to a
// fixpoint.
package interpreter

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/validator"
)

// EngineState is the interpreter's own state machine (spec.md §4.13).
type EngineState string

const (
	Uninitialized EngineState = "uninitialized"
	Running       EngineState = "running"
	Stopped       EngineState = "stopped"
)

// MaxEventlessIterations is the default cycle guard of spec.md §4.7/§9:
// the eventless fixpoint stops after this many consecutive iterations even
// if a transition remains enabled, so the engine never diverges.
const MaxEventlessIterations = 100

// Options configures a StateChart's collaborators.
type Options struct {
	ActionExecutor scxml.ActionExecutor
	// MaxEventlessIterations overrides MaxEventlessIterations; 0 uses the
	// default.
	MaxEventlessIterations int
}

// StateChart owns the Configuration and the internal/external event
// queues, and holds a shared read-only reference to the OptimizedDocument
// (spec.md §3 Ownership). It is the value SendEvent transforms; a
// StateChart is otherwise immutable from the outside.
type StateChart struct {
	doc    *scxml.OptimizedDocument
	config scxml.Configuration
	state  EngineState
	opts   Options

	internalQueue []scxml.Event
}

// Document exposes the shared, read-only OptimizedDocument.
func (sc *StateChart) Document() *scxml.OptimizedDocument { return sc.doc }

// State reports the engine's own state machine position (§4.13).
func (sc *StateChart) State() EngineState { return sc.state }

// Initialize validates+optimizes doc, computes the initial configuration
// by entering the document's initial state (or first top-level state) per
// §4.6, runs the eventless fixpoint, and returns the running StateChart.
// Validation errors are returned as *scxml.ValidationError, never panicked
// (spec.md §7 propagation policy).
func Initialize(ctx context.Context, doc *scxml.Document, vcfg validator.Config, opts Options) (*StateChart, error) {
	ctx, span := otel.Tracer("scxml.interpreter").Start(ctx, "interpreter.Initialize")
	defer span.End()

	opt, res := validator.Validate(ctx, doc, vcfg)
	if res.HasErrors() {
		span.SetAttributes(attribute.Int("scxml.validation_errors", len(res.Errors())))
		return nil, &scxml.ValidationError{Errors: res.Errors(), Warnings: res.Warnings()}
	}
	for _, w := range res.Warnings() {
		slog.WarnContext(ctx, "scxml validation warning", "message", w)
	}

	start := opt.Initial
	if start == "" && len(opt.TopLevel) > 0 {
		start = opt.TopLevel[0]
	}

	sc := &StateChart{
		doc:    opt,
		config: scxml.NewConfiguration(),
		state:  Running,
		opts:   opts,
	}
	if start != "" {
		leaves := enter(opt, start)
		for _, leaf := range leaves {
			sc.config.Add(leaf)
		}
		runActions(ctx, sc, start, onEntryActionsFor(opt, leaves))
	}

	sc.drainInternalQueue(ctx)
	sc.runEventlessFixpoint(ctx)
	sc.updateEngineState()

	span.SetAttributes(attribute.StringSlice("scxml.initial_configuration", sc.ActiveLeaves()))
	return sc, nil
}

// SendEvent is a pure transformation: it never mutates sc in place — it
// returns a new *StateChart reflecting the macrostep triggered by event,
// per spec.md §5 ("send_event is a pure transformation"). No-match is
// silent: if event enables nothing, the returned StateChart has an
// unchanged (but newly allocated, equal) Configuration (§4.3, §8 property
// 5).
func (sc *StateChart) SendEvent(ctx context.Context, event scxml.Event) *StateChart {
	ctx, span := otel.Tracer("scxml.interpreter").Start(ctx, "interpreter.SendEvent")
	defer span.End()
	span.SetAttributes(attribute.String("scxml.event", event.Name))

	if sc.state == Stopped {
		return sc.clone()
	}

	next := sc.clone()
	next.microstep(ctx, event.Name, event.Payload)
	next.drainInternalQueue(ctx)
	next.runEventlessFixpoint(ctx)
	next.updateEngineState()
	return next
}

// clone returns a shallow copy sharing doc but with an independent
// Configuration and empty internal queue — SendEvent's starting point.
func (sc *StateChart) clone() *StateChart {
	return &StateChart{
		doc:    sc.doc,
		config: sc.config.Clone(),
		state:  sc.state,
		opts:   sc.opts,
	}
}

// microstep runs exactly one round of select→resolve→exit→enter→install
// for eventName (spec.md §4.7). It is also used, with eventName ==
// scxml.NullEvent, to drive one eventless round.
func (sc *StateChart) microstep(ctx context.Context, eventName string, payload map[string]any) bool {
	cands := selectTransitions(ctx, sc.doc, sc.config, eventName, payload)
	if len(cands) == 0 {
		return false
	}
	transitions := resolveConflicts(cands)
	if len(transitions) == 0 {
		return false
	}

	type exitPlan struct {
		lccaID string
		leaves []string
		target string
	}
	var plans []exitPlan
	exited := make(map[string]bool)
	var exitOrder []string

	for _, t := range transitions {
		if t.Target == nil {
			// targetless/internal transition: no exit/entry occurs, the
			// configuration is unchanged (§4.9 step 1, §4.11).
			continue
		}
		lccaID, leaves := exitSet(sc.doc, sc.config, t.Source, *t.Target)
		plans = append(plans, exitPlan{lccaID: lccaID, leaves: leaves, target: *t.Target})
		for _, leaf := range leaves {
			if !exited[leaf] {
				exited[leaf] = true
				exitOrder = append(exitOrder, leaf)
			}
		}
	}
	sortByOrderDesc(sc.doc, exitOrder)

	// onexit actions run after the exit set is computed but before the
	// configuration is updated (§9 open question (a)), in reverse document
	// order.
	for _, leaf := range exitOrder {
		if st, ok := sc.doc.FindState(leaf); ok {
			runActions(ctx, sc, leaf, st.OnExit)
		}
	}

	for leaf := range exited {
		sc.config.Remove(leaf)
	}

	var entered []string
	for _, p := range plans {
		for _, leaf := range entryStates(sc.doc, sc.config, p.lccaID, p.target) {
			if !sc.config.Has(leaf) {
				sc.config.Add(leaf)
				entered = append(entered, leaf)
			}
		}
	}

	// onentry actions run after the configuration is installed (§9a).
	for _, leaf := range entered {
		if st, ok := sc.doc.FindState(leaf); ok {
			runActions(ctx, sc, leaf, st.OnEntry)
		}
	}

	return true
}

// drainInternalQueue processes raised events FIFO before the eventless
// fixpoint, per spec.md §5 ("internal events... drained before the next
// external event... processed in FIFO order").
func (sc *StateChart) drainInternalQueue(ctx context.Context) {
	for len(sc.internalQueue) > 0 {
		ev := sc.internalQueue[0]
		sc.internalQueue = sc.internalQueue[1:]
		sc.microstep(ctx, ev.Name, ev.Payload)
		// a microstep may itself raise further internal events (via
		// onentry/onexit <raise>); those were appended to the back of
		// sc.internalQueue by raise(), preserving FIFO order.
	}
}

// runEventlessFixpoint repeatedly fires eventless microsteps until none is
// enabled (spec.md §4.7), draining any internally raised events between
// each round (§9 open question (b): internal queue first, eventless after,
// but a <raise> fired during an eventless round must itself drain before
// the next eventless round resumes). Stops after MaxEventlessIterations
// consecutive rounds regardless (§4.7, §4.12): the configuration freezes
// at the last stable microstep, no error is raised.
func (sc *StateChart) runEventlessFixpoint(ctx context.Context) {
	limit := sc.opts.MaxEventlessIterations
	if limit <= 0 {
		limit = MaxEventlessIterations
	}
	for i := 0; i < limit; i++ {
		fired := sc.microstep(ctx, scxml.NullEvent, nil)
		sc.drainInternalQueue(ctx)
		if !fired {
			return
		}
	}
	slog.WarnContext(ctx, "eventless fixpoint did not converge, stopping", "limit", limit)
}

// updateEngineState implements spec.md §4.13: Running -> Stopped once the
// configuration consists solely of top-level final states.
func (sc *StateChart) updateEngineState() {
	if sc.state == Stopped {
		return
	}
	if len(sc.config) == 0 {
		return
	}
	for leaf := range sc.config {
		st, ok := sc.doc.FindState(leaf)
		if !ok || st.Kind != scxml.KindFinal || st.Parent != "" {
			return
		}
	}
	sc.state = Stopped
}

// raise appends an internal event to the queue, preserving FIFO order.
func (sc *StateChart) raise(eventName string) {
	sc.internalQueue = append(sc.internalQueue, scxml.Event{Name: eventName})
}

func runActions(ctx context.Context, sc *StateChart, stateID string, actions []scxml.Action) {
	if len(actions) == 0 {
		return
	}
	executor := sc.opts.ActionExecutor
	if executor == nil {
		executor = scxml.DefaultActionExecutor{}
	}
	for _, a := range actions {
		if err := executor.Execute(ctx, a, sc.raise); err != nil {
			slog.WarnContext(ctx, "action execution failed", "state", stateID, "error", err)
		}
	}
}

// onEntryActionsFor collects the OnEntry actions of every leaf entered, in
// the order they were entered — used only for the initial configuration,
// where there is no prior "exited" set to interleave with.
func onEntryActionsFor(doc *scxml.OptimizedDocument, leaves []string) []scxml.Action {
	var out []scxml.Action
	for _, leaf := range leaves {
		if st, ok := doc.FindState(leaf); ok {
			out = append(out, st.OnEntry...)
		}
	}
	return out
}

// --- read-only queries (spec.md §4.3) --------------------------------------

// ActiveLeaves returns the configuration's ids in document order.
func (sc *StateChart) ActiveLeaves() []string {
	return sc.config.SortedIDs(func(id string) int {
		if st, ok := sc.doc.FindState(id); ok {
			return st.Order
		}
		return -1
	})
}

// ActiveWithAncestors returns every active leaf and every one of its
// ancestors, in document order (spec.md §8 property 4).
func (sc *StateChart) ActiveWithAncestors() []string {
	set := activeWithAncestors(sc.doc, sc.config)
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sortStates(sc.doc, ids)
	return ids
}

// IsActive reports whether id is currently an active leaf or ancestor.
func (sc *StateChart) IsActive(id string) bool {
	if sc.config.Has(id) {
		return true
	}
	_, ok := activeWithAncestors(sc.doc, sc.config)[id]
	return ok
}
