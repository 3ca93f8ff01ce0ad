// Command scxmlvalidate validates an SCXML document and prints its
// diagnostics. A rework of the teacher's validator/cmd/validate/main.go
// for this core's Validator/Result/PrettyReporter shapes.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fluxstate/scxml/parser"
	"github.com/fluxstate/scxml/validator"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: scxmlvalidate <scxml-file>")
		os.Exit(1)
	}
	xmlFile := os.Args[1]

	data, err := os.ReadFile(xmlFile)
	if err != nil {
		log.Fatalf("failed to read %s: %v", xmlFile, err)
	}

	doc, err := parser.Parse(data)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", xmlFile, err)
	}

	ctx := context.Background()
	_, res := validator.Validate(ctx, doc, validator.Config{SourceName: xmlFile})

	reporter := validator.NewPrettyReporter(os.Stdout, validator.PrettyConfig{Color: true})
	if err := reporter.Print(xmlFile, res.Diagnostics); err != nil {
		log.Fatalf("failed to print diagnostics: %v", err)
	}

	if res.HasErrors() {
		os.Exit(1)
	}
}
