package validator

import (
	"errors"
	"testing"

	"github.com/fluxstate/scxml"
)

type rejectingOracle struct{}

func (rejectingOracle) Compile(source string) (scxml.CompiledCondition, error) {
	return nil, errors.New("always rejects")
}

var _ scxml.ConditionOracle = rejectingOracle{}

func TestOptimizeBuildsTransitionsBySourceInOrder(t *testing.T) {
	target := "b"
	doc := &scxml.Document{
		TopLevel: []string{"a", "b"},
		States: map[string]*scxml.State{
			"a": {
				ID: "a", Order: 0,
				Transitions: []*scxml.Transition{
					{Source: "a", Order: 5, Target: &target},
					{Source: "a", Order: 2, Target: &target},
				},
			},
			"b": {ID: "b", Order: 1},
		},
	}
	opt, diags := Optimize(doc, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	ts := opt.TransitionsBySource["a"]
	if len(ts) != 2 || ts[0].Order != 2 || ts[1].Order != 5 {
		t.Fatalf("TransitionsBySource[a] not sorted by Order: %+v", ts)
	}
}

func TestOptimizeDefaultsToDefaultOracle(t *testing.T) {
	doc := &scxml.Document{
		States: map[string]*scxml.State{
			"a": {ID: "a", Transitions: []*scxml.Transition{{Source: "a", Cond: "1==1"}}},
		},
	}
	opt, diags := Optimize(doc, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %+v", diags)
	}
	if opt.TransitionsBySource["a"][0].CompiledCond == nil {
		t.Fatal("expected CompiledCond to be set by the default oracle")
	}
}

func TestOptimizeReportsConditionCompileErrors(t *testing.T) {
	doc := &scxml.Document{
		States: map[string]*scxml.State{
			"a": {ID: "a", Transitions: []*scxml.Transition{{Source: "a", Cond: "not valid"}}},
		},
	}
	_, diags := Optimize(doc, rejectingOracle{})
	if len(diags) != 1 || diags[0].Code != "E112" {
		t.Fatalf("diags = %+v, want one E112", diags)
	}
}
