package validator

import (
	"testing"

	"github.com/agentflare-ai/go-jsonschema"

	"github.com/fluxstate/scxml"
)

func TestValidateDataSchemasSkipsNonLiteralExpr(t *testing.T) {
	doc := &scxml.Document{
		DataModel: []scxml.Data{{ID: "score", Expr: "computeScore()", Schema: "file://score.schema.json"}},
	}
	schemas := map[string]*jsonschema.Schema{"file://score.schema.json": {}}
	diags := validateDataSchemas(doc, schemas)
	if len(diags) != 0 {
		t.Fatalf("diags = %+v, want none (non-literal expr is skipped)", diags)
	}
}

func TestValidateDataSchemasUnknownSchemaReference(t *testing.T) {
	doc := &scxml.Document{
		DataModel: []scxml.Data{{ID: "score", Expr: "0", Schema: "file://missing.schema.json"}},
	}
	diags := validateDataSchemas(doc, map[string]*jsonschema.Schema{})
	if len(diags) != 1 || diags[0].Code != "E113" {
		t.Fatalf("diags = %+v, want one E113", diags)
	}
}

func TestValidateDataSchemasNoSchemasConfigured(t *testing.T) {
	doc := &scxml.Document{
		DataModel: []scxml.Data{{ID: "score", Expr: "0", Schema: "file://score.schema.json"}},
	}
	if diags := validateDataSchemas(doc, nil); len(diags) != 0 {
		t.Fatalf("diags = %+v, want none when no schemas are configured", diags)
	}
}
