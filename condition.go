package scxml

import "context"

// EvalContext is the evaluation context a compiled condition runs against
// (spec.md §6.3): the active-configuration predicate, the event that
// triggered transition selection (empty name during the eventless
// fixpoint), and its payload.
type EvalContext struct {
	In        func(stateID string) bool
	EventName string
	EventData map[string]any
}

// CompiledCondition is the result of compiling a transition's `cond`
// source once at validation time (spec.md §2).
type CompiledCondition interface {
	Eval(ctx context.Context, ec EvalContext) (bool, error)
}

// ConditionOracle is the pluggable compile/eval boundary of spec.md §6.3.
// The core is agnostic to the expression language; oracle.DefaultOracle
// ships a usable default (see the oracle package), but hosts may supply
// their own.
type ConditionOracle interface {
	Compile(source string) (CompiledCondition, error)
}
