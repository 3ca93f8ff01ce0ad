package validator

import (
	"context"
	"testing"

	"github.com/fluxstate/scxml"
)

func strPtr(s string) *string { return &s }

func validDoc() *scxml.Document {
	return &scxml.Document{
		Initial:  "idle",
		TopLevel: []string{"idle", "running"},
		States: map[string]*scxml.State{
			"idle": {
				ID: "idle", Kind: scxml.KindAtomic, Order: 0,
				Transitions: []*scxml.Transition{{Source: "idle", Order: 1, Event: strPtr("go"), Target: strPtr("running")}},
			},
			"running": {ID: "running", Kind: scxml.KindAtomic, Order: 2, Parent: ""},
		},
	}
}

func TestValidateAcceptsWellFormedDocument(t *testing.T) {
	opt, res := Validate(context.Background(), validDoc())
	if res.HasErrors() {
		t.Fatalf("unexpected errors: %+v", res.Diagnostics)
	}
	if opt == nil {
		t.Fatal("expected a non-nil OptimizedDocument")
	}
	if len(opt.TransitionsBySource["idle"]) != 1 {
		t.Fatalf("TransitionsBySource[idle] = %v", opt.TransitionsBySource["idle"])
	}
}

func TestValidateRejectsNilDocument(t *testing.T) {
	opt, res := Validate(context.Background(), nil)
	if opt != nil {
		t.Fatal("expected nil OptimizedDocument")
	}
	if !res.HasErrors() {
		t.Fatal("expected an error for a nil document")
	}
}

func TestValidateFailFastSkipsOptimize(t *testing.T) {
	doc := &scxml.Document{
		States: map[string]*scxml.State{
			"a": {ID: "a", Transitions: []*scxml.Transition{{Source: "a", Target: strPtr("ghost")}}},
		},
	}
	opt, res := Validate(context.Background(), doc)
	if opt != nil {
		t.Fatal("expected nil OptimizedDocument on validation failure")
	}
	if !res.HasErrors() {
		t.Fatal("expected errors")
	}
}

func TestValidateStrictEscalatesWarnings(t *testing.T) {
	doc := &scxml.Document{
		Initial:  "a",
		TopLevel: []string{"a"},
		States: map[string]*scxml.State{
			"a":        {ID: "a"},
			"orphaned": {ID: "orphaned"},
		},
	}
	_, lenient := Validate(context.Background(), doc)
	if lenient.HasErrors() {
		t.Fatal("expected only a warning in non-strict mode")
	}

	_, strict := Validate(context.Background(), doc, Config{Strict: true})
	if !strict.HasErrors() {
		t.Fatal("expected the warning to be escalated to an error in strict mode")
	}
}

func TestValidatorReusableAcrossCalls(t *testing.T) {
	v := New(Config{SourceName: "a.scxml"})
	_, res1 := v.Validate(context.Background(), validDoc())
	_, res2 := v.Validate(context.Background(), validDoc())
	if res1.HasErrors() || res2.HasErrors() {
		t.Fatal("unexpected errors across repeated Validate calls")
	}
}

func TestResultErrorsAndWarnings(t *testing.T) {
	r := &Result{}
	r.Add(Diagnostic{Severity: SeverityError, Code: "E1", Message: "boom"})
	r.Add(Diagnostic{Severity: SeverityWarning, Code: "W1", Message: "hmm"})
	if len(r.Errors()) != 1 || len(r.Warnings()) != 1 {
		t.Fatalf("Errors()=%v Warnings()=%v", r.Errors(), r.Warnings())
	}
}
