package validator

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// PrettyReporter renders human-friendly diagnostics, in the spirit of the
// teacher's validator.PrettyReporter (rustc-style, one line per finding
// plus hints) but rebound to this core's id-based Diagnostic, which has no
// source offsets to build a code frame from.
type PrettyReporter struct {
	w     io.Writer
	color bool
}

// PrettyConfig configures PrettyReporter construction. Zero value is a
// sensible default (no color).
type PrettyConfig struct {
	Color bool
}

func NewPrettyReporter(w io.Writer, maybeCfg ...PrettyConfig) *PrettyReporter {
	cfg := PrettyConfig{}
	for _, c := range maybeCfg {
		cfg = c
	}
	return &PrettyReporter{w: w, color: cfg.Color}
}

// Print renders diags, sorted by severity (errors first) then code, the
// way the teacher's reporter sorts via SortedDiagnostics before printing.
func (r *PrettyReporter) Print(sourceName string, diags []Diagnostic) error {
	if len(diags) == 0 {
		fmt.Fprintf(r.w, "%s: ok (no issues)\n", nonEmpty(sourceName, "<input>"))
		return nil
	}
	for _, d := range SortedDiagnostics(diags) {
		loc := d.StateID
		if d.Attribute != "" {
			loc = fmt.Sprintf("%s@%s", loc, d.Attribute)
		}
		head := fmt.Sprintf("%s: %s[%s] %s", nonEmpty(loc, sourceName), strings.ToUpper(string(d.Severity)), d.Code, d.Message)
		fmt.Fprintln(r.w, r.style(head, d.Severity))
	}
	return nil
}

// PrintJSON renders diags as an indented JSON array, for machine
// consumption alongside the human-readable Print path (spec.md §6.4).
func (r *PrettyReporter) PrintJSON(diags []Diagnostic) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

func (r *PrettyReporter) style(s string, sev Severity) string {
	if !r.color {
		return s
	}
	const (
		red    = "\x1b[31m"
		yellow = "\x1b[33m"
		blue   = "\x1b[34m"
		reset  = "\x1b[0m"
	)
	switch sev {
	case SeverityError:
		return red + s + reset
	case SeverityWarning:
		return yellow + s + reset
	default:
		return blue + s + reset
	}
}

// SortedDiagnostics returns diags sorted errors-first, then by code, a
// stable presentation order independent of check execution order.
func SortedDiagnostics(diags []Diagnostic) []Diagnostic {
	out := make([]Diagnostic, len(diags))
	copy(out, diags)
	rank := func(s Severity) int {
		switch s {
		case SeverityError:
			return 0
		case SeverityWarning:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if rank(out[i].Severity) != rank(out[j].Severity) {
			return rank(out[i].Severity) < rank(out[j].Severity)
		}
		return out[i].Code < out[j].Code
	})
	return out
}

func nonEmpty(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
