// Package oracle provides DefaultOracle, a usable default implementation
// of the scxml.ConditionOracle plug-in point (spec.md §6.3) so the module
// is runnable without a host supplying its own expression language. It is
// not a teacher dependency — github.com/expr-lang/expr is the embeddable
// expression evaluator the rest of the retrieved pack reaches for
// (GoCodeAlone-workflow, smilemakc-mbflow, ormasoftchile-gert all declare
// it) — but the oracle interface itself keeps the core fully agnostic to
// this choice; hosts may supply any scxml.ConditionOracle.
package oracle

import (
	"context"
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/fluxstate/scxml"
)

// DefaultOracle compiles `cond` strings with expr-lang/expr. Conditions
// see the event payload's fields as top-level identifiers (spec.md S6's
// cond="score>80" against payload {score: 90}), plus two reserved names:
// `In` — the SCXML In(stateID) predicate (§6.3) — and `event`, the
// triggering event's name (empty during the eventless fixpoint). The
// predicate is named `In` because lowercase `in` is an operator keyword in
// expr-lang and cannot be called as a function.
type DefaultOracle struct{}

func (DefaultOracle) Compile(source string) (scxml.CompiledCondition, error) {
	// A loose map environment is used (rather than a fixed struct) because
	// the set of payload fields a condition may reference is per-document,
	// not known at compile time.
	program, err := expr.Compile(source, expr.Env(map[string]any{}), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", source, err)
	}
	return &compiled{program: program}, nil
}

type compiled struct {
	program *vm.Program
}

// Eval runs the compiled program against ec. A runtime evaluation error is
// the caller's to absorb as false per spec.md §4.5/§7 "invalid expression"
// policy — Eval itself still returns the error so the caller can log it.
func (c *compiled) Eval(ctx context.Context, ec scxml.EvalContext) (bool, error) {
	env := make(map[string]any, len(ec.EventData)+2)
	for k, v := range ec.EventData {
		env[k] = v
	}
	env["In"] = ec.In
	env["event"] = ec.EventName

	out, err := expr.Run(c.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate condition: %w", err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition did not evaluate to a boolean, got %T", out)
	}
	return b, nil
}

var _ scxml.ConditionOracle = DefaultOracle{}
