package interpreter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/oracle"
	"github.com/fluxstate/scxml/parser"
	"github.com/fluxstate/scxml/validator"
)

// scenario tests exercise the black-box behaviors of spec.md §8 end to end
// (parse -> validate -> optimize -> initialize -> send_event), the way the
// teacher's adapter-level tests lean on testify's require for readable
// end-to-end assertions rather than manual if/Fatalf chains.

func initChart(t *testing.T, src string) *StateChart {
	t.Helper()
	doc, err := parser.Parse([]byte(src))
	require.NoError(t, err)
	sc, err := Initialize(context.Background(), doc, validator.Config{Oracle: oracle.DefaultOracle{}}, Options{})
	require.NoError(t, err)
	return sc
}

func TestScenarioSimpleTransition(t *testing.T) {
	sc := initChart(t, `<scxml initial="a">
		<state id="a"><transition event="go" target="b"/></state>
		<state id="b"/>
	</scxml>`)
	require.Equal(t, []string{"a"}, sc.ActiveLeaves())

	sc = sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	require.Equal(t, []string{"b"}, sc.ActiveLeaves())

	silent := sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	require.Equal(t, []string{"b"}, silent.ActiveLeaves(), "an unmatched event leaves the configuration unchanged")
}

func TestScenarioCompoundInitial(t *testing.T) {
	sc := initChart(t, `<scxml initial="p">
		<state id="p" initial="c1">
			<state id="c1"/>
			<state id="c2"/>
		</state>
	</scxml>`)
	require.Equal(t, []string{"c1"}, sc.ActiveLeaves())
}

func TestScenarioParallelEntry(t *testing.T) {
	sc := initChart(t, `<scxml initial="par">
		<parallel id="par">
			<state id="A" initial="a1"><state id="a1"/></state>
			<state id="B" initial="b1"><state id="b1"/></state>
		</parallel>
	</scxml>`)
	require.ElementsMatch(t, []string{"a1", "b1"}, sc.ActiveLeaves())
}

func TestScenarioParallelRegionsFireIndependentlyInOneMicrostep(t *testing.T) {
	// Both regions have their own "go" transition. Per spec.md §4.8, their
	// sources live in disjoint parallel regions, so both must fire within
	// the single microstep this event triggers, instead of one preempting
	// the other the way two transitions from the same region would.
	sc := initChart(t, `<scxml initial="par">
		<parallel id="par">
			<state id="A" initial="a1">
				<state id="a1"><transition event="go" target="a2"/></state>
				<state id="a2"/>
			</state>
			<state id="B" initial="b1">
				<state id="b1"><transition event="go" target="b2"/></state>
				<state id="b2"/>
			</state>
		</parallel>
	</scxml>`)
	require.ElementsMatch(t, []string{"a1", "b1"}, sc.ActiveLeaves())

	sc = sc.SendEvent(context.Background(), scxml.Event{Name: "go"})
	require.ElementsMatch(t, []string{"a2", "b2"}, sc.ActiveLeaves(), "both regions' transitions must fire in the same microstep")
}

func TestScenarioEventlessFixpointChainsThroughToStableState(t *testing.T) {
	sc := initChart(t, `<scxml initial="a">
		<state id="a"><transition target="b"/></state>
		<state id="b"><transition target="c"/></state>
		<state id="c"/>
	</scxml>`)
	require.Equal(t, []string{"c"}, sc.ActiveLeaves())
}

func TestScenarioDescendantPriority(t *testing.T) {
	sc := initChart(t, `<scxml initial="p">
		<state id="p">
			<transition event="e" target="elsewhere"/>
			<state id="c" initial="c1">
				<state id="c1">
					<transition event="e" target="target"/>
				</state>
			</state>
			<state id="target"/>
		</state>
		<state id="elsewhere"/>
	</scxml>`)
	require.Equal(t, []string{"c1"}, sc.ActiveLeaves())

	sc = sc.SendEvent(context.Background(), scxml.Event{Name: "e"})
	require.Equal(t, []string{"target"}, sc.ActiveLeaves(), "the descendant's transition must win over the ancestor's")
}

func TestScenarioConditionalTransition(t *testing.T) {
	src := `<scxml initial="pending">
		<state id="pending">
			<transition event="submit" cond="score>80" target="approved"/>
			<transition event="submit" target="rejected"/>
		</state>
		<state id="approved"/>
		<state id="rejected"/>
	</scxml>`

	approved := initChart(t, src)
	approved = approved.SendEvent(context.Background(), scxml.Event{Name: "submit", Payload: map[string]any{"score": 90}})
	require.Equal(t, []string{"approved"}, approved.ActiveLeaves())

	rejected := initChart(t, src)
	rejected = rejected.SendEvent(context.Background(), scxml.Event{Name: "submit", Payload: map[string]any{"score": 50}})
	require.Equal(t, []string{"rejected"}, rejected.ActiveLeaves())
}
