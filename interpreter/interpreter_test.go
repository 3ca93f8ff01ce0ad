package interpreter

import (
	"context"
	"testing"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/oracle"
	"github.com/fluxstate/scxml/parser"
	"github.com/fluxstate/scxml/validator"
)

func mustInit(t *testing.T, src string) *StateChart {
	t.Helper()
	doc, err := parser.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	sc, err := Initialize(context.Background(), doc, validator.Config{Oracle: oracle.DefaultOracle{}}, Options{})
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return sc
}

func assertLeaves(t *testing.T, sc *StateChart, want ...string) {
	t.Helper()
	got := sc.ActiveLeaves()
	if len(got) != len(want) {
		t.Fatalf("ActiveLeaves() = %v, want %v", got, want)
	}
	for i, id := range want {
		if got[i] != id {
			t.Fatalf("ActiveLeaves() = %v, want %v", got, want)
		}
	}
}

func TestTerminalConfiguration(t *testing.T) {
	sc := mustInit(t, `<scxml initial="a">
		<state id="a"><transition event="go" target="done"/></state>
		<final id="done"/>
	</scxml>`)
	if sc.State() != Running {
		t.Fatalf("State() = %v, want Running", sc.State())
	}
	sc = sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	if sc.State() != Stopped {
		t.Fatalf("State() = %v, want Stopped once only top-level final states are active", sc.State())
	}
}

func TestOnEntryActionRaisesInternalEvent(t *testing.T) {
	sc := mustInit(t, `<scxml initial="a">
		<state id="a">
			<transition event="go" target="b"/>
		</state>
		<state id="b">
			<onentry><raise event="arrived"/></onentry>
			<transition event="arrived" target="c"/>
		</state>
		<state id="c"/>
	</scxml>`)
	sc = sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	assertLeaves(t, sc, "c")
}

func TestEventlessFixpointConverges(t *testing.T) {
	sc := mustInit(t, `<scxml initial="a">
		<state id="a"><transition target="a"/></state>
	</scxml>`)
	// self-loop eventless transition would diverge without the cycle guard;
	// the engine must still return, landing wherever the guard stops it.
	if sc == nil {
		t.Fatal("expected Initialize to return despite a non-converging eventless loop")
	}
	assertLeaves(t, sc, "a")
}

func TestSendEventIsPureTransformation(t *testing.T) {
	sc := mustInit(t, `<scxml initial="a">
		<state id="a"><transition event="go" target="b"/></state>
		<state id="b"/>
	</scxml>`)
	next := sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	assertLeaves(t, sc, "a") // original unchanged
	assertLeaves(t, next, "b")
}
