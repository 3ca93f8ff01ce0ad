package validator

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestPrettyReporterPrintNoIssues(t *testing.T) {
	var buf bytes.Buffer
	r := NewPrettyReporter(&buf)
	if err := r.Print("a.scxml", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "ok (no issues)") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestPrettyReporterPrintOrdersErrorsFirst(t *testing.T) {
	var buf bytes.Buffer
	r := NewPrettyReporter(&buf)
	diags := []Diagnostic{
		{Severity: SeverityWarning, Code: "W102", Message: "unreachable", StateID: "b"},
		{Severity: SeverityError, Code: "E104", Message: "bad target", StateID: "a"},
	}
	if err := r.Print("a.scxml", diags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "E104") > strings.Index(out, "W102") {
		t.Fatalf("expected E104 to print before W102, got:\n%s", out)
	}
}

func TestPrettyReporterPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewPrettyReporter(&buf)
	diags := []Diagnostic{{Severity: SeverityError, Code: "E104", Message: "bad target"}}
	if err := r.PrintJSON(diags); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out []Diagnostic
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(out) != 1 || out[0].Code != "E104" {
		t.Fatalf("decoded = %+v", out)
	}
}

func TestSortedDiagnosticsStableByCode(t *testing.T) {
	diags := []Diagnostic{
		{Severity: SeverityError, Code: "E200"},
		{Severity: SeverityError, Code: "E101"},
		{Severity: SeverityWarning, Code: "W101"},
	}
	sorted := SortedDiagnostics(diags)
	if sorted[0].Code != "E101" || sorted[1].Code != "E200" || sorted[2].Code != "W101" {
		t.Fatalf("sorted = %+v", sorted)
	}
}
