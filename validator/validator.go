// Package validator runs the fixed pipeline of structural checks from
// spec.md §4.2 against a raw scxml.Document and, if no errors were found,
// produces the scxml.OptimizedDocument the interpreter package consumes.
package validator

import (
	"context"
	"fmt"
	"sync"

	"github.com/agentflare-ai/go-jsonschema"
	"go.opentelemetry.io/otel"

	"github.com/fluxstate/scxml"
)

var validatorPool = sync.Pool{
	New: func() any { return &Validator{} },
}

// Severity mirrors the teacher's validator.Severity three-level scheme.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic describes one validation finding, identifying the offending
// state id or attribute per spec.md §6.4.
type Diagnostic struct {
	Severity  Severity `json:"severity"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	StateID   string   `json:"state_id,omitempty"`
	Attribute string   `json:"attribute,omitempty"`
}

// Result is the aggregate of a validation run.
type Result struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

func (r *Result) Add(diags ...Diagnostic) { r.Diagnostics = append(r.Diagnostics, diags...) }

// HasErrors reports whether any diagnostic carries SeverityError.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Errors/Warnings project Result into the two plain-string lists spec.md
// §6.4 specifies as the diagnostics boundary surface.
func (r *Result) Errors() []string   { return messagesOf(r, SeverityError) }
func (r *Result) Warnings() []string { return messagesOf(r, SeverityWarning) }

func messagesOf(r *Result, sev Severity) []string {
	var out []string
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			out = append(out, fmt.Sprintf("[%s] %s", d.Code, d.Message))
		}
	}
	return out
}

// Config controls validator behavior, mirroring the teacher's
// validator.Config dependency-injection shape (nil ⇒ defaults).
type Config struct {
	Strict     bool   // escalate warnings to errors
	SourceName string // for diagnostics/tracing only

	// Oracle compiles transition `cond` strings during optimization. If
	// nil, oracle.DefaultOracle is used (see the oracle package); this
	// field exists so validator stays decoupled from any one expression
	// language (spec.md §6.3).
	Oracle scxml.ConditionOracle

	// Checks allows injection of a custom check pipeline. Nil uses
	// DefaultChecks().
	Checks []Check

	// Schemas, keyed by reference string (e.g. "file://score.schema.json"),
	// backs the optional <data schema="..."> static check.
	Schemas map[string]*jsonschema.Schema
}

// Validator validates and optimizes SCXML documents.
type Validator struct {
	config Config
}

// New creates a Validator. The variadic cfg mirrors the teacher's
// New(cfg ...Config) pattern: zero or one Config, last one wins.
func New(cfg ...Config) *Validator {
	c := Config{}
	for _, x := range cfg {
		c = x
	}
	return &Validator{config: c}
}

// Validate runs the pipeline of checks (§4.2) and, if no errors were
// raised, returns the OptimizedDocument. Fail-fast semantics: on any
// error diagnostic, the OptimizedDocument return is nil.
func Validate(ctx context.Context, doc *scxml.Document, cfg ...Config) (*scxml.OptimizedDocument, Result) {
	v := validatorPool.Get().(*Validator)
	defer func() {
		v.config = Config{}
		validatorPool.Put(v)
	}()
	v.config = Config{}
	for _, c := range cfg {
		v.config = c
	}
	return v.Validate(ctx, doc)
}

func (v *Validator) Validate(ctx context.Context, doc *scxml.Document) (*scxml.OptimizedDocument, Result) {
	ctx, span := otel.Tracer("scxml.validator").Start(ctx, "validator.Validate")
	defer span.End()

	res := Result{}
	if doc == nil {
		res.Add(Diagnostic{Severity: SeverityError, Code: "E000", Message: "nil document"})
		return nil, res
	}

	checks := v.config.Checks
	if checks == nil {
		checks = DefaultChecks()
	}

	res = runChecks(ctx, doc, checks)

	if schemaDiags := validateDataSchemas(doc, v.config.Schemas); len(schemaDiags) > 0 {
		res.Add(schemaDiags...)
	}

	if v.config.Strict {
		for i := range res.Diagnostics {
			if res.Diagnostics[i].Severity == SeverityWarning {
				res.Diagnostics[i].Severity = SeverityError
			}
		}
	}

	if res.HasErrors() {
		return nil, res
	}

	opt, optDiags := Optimize(doc, v.config.Oracle)
	res.Add(optDiags...)
	if res.HasErrors() {
		return nil, res
	}
	return opt, res
}
