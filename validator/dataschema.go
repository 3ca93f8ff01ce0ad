package validator

import (
	"encoding/json"
	"fmt"

	"github.com/agentflare-ai/go-jsonschema"

	"github.com/fluxstate/scxml"
)

// validateDataSchemas statically checks <data schema="..." expr="...">
// declarations whose expr is a JSON literal against the referenced schema.
// Adapted near-verbatim from the teacher's
// validator/xsd_validator.go:validateDataSchemas — same shape (unmarshal
// the literal expr, jsonschema.ValidateDocument, surface .Errors), rebound
// to scxml.Data and this core's Diagnostic. An expr that is not valid JSON
// is assumed to be an expression evaluated at runtime by the host
// datamodel and is silently skipped, matching the teacher's "will be
// validated at runtime" info-level behavior (downgraded to a no-op here
// since this core has no runtime datamodel of its own).
func validateDataSchemas(doc *scxml.Document, schemas map[string]*jsonschema.Schema) []Diagnostic {
	if len(schemas) == 0 {
		return nil
	}
	var diags []Diagnostic
	for _, d := range doc.DataModel {
		if d.Schema == "" || d.Expr == "" {
			continue
		}
		schema, ok := schemas[d.Schema]
		if !ok {
			diags = append(diags, Diagnostic{
				Severity: SeverityError, Code: "E113",
				Message:   fmt.Sprintf("data %q references unknown schema %q", d.ID, d.Schema),
				StateID:   d.ID,
				Attribute: "schema",
			})
			continue
		}

		var literal any
		if err := json.Unmarshal([]byte(d.Expr), &literal); err != nil {
			continue // not a JSON literal; evaluated at runtime, skip
		}

		result := jsonschema.ValidateDocument(literal, schema)
		if !result.Valid {
			var msgs []string
			for _, verr := range result.Errors {
				msgs = append(msgs, verr.Message)
			}
			diags = append(diags, Diagnostic{
				Severity:  SeverityWarning,
				Code:      "W103",
				Message:   fmt.Sprintf("data %q expr does not match schema %q: %v", d.ID, d.Schema, msgs),
				StateID:   d.ID,
				Attribute: "expr",
			})
		}
	}
	return diags
}
