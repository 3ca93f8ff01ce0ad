// Command scxmlrun loads an SCXML document, initializes it, and feeds it
// NDJSON events read from stdin, printing the active configuration after
// each one. Each input line is a JSON object {"name": "...", "payload": {...}}.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/fluxstate/scxml"
	"github.com/fluxstate/scxml/driver"
	"github.com/fluxstate/scxml/interpreter"
	"github.com/fluxstate/scxml/oracle"
	"github.com/fluxstate/scxml/parser"
	"github.com/fluxstate/scxml/validator"
)

func main() {
	rate := flag.Float64("rate", 0, "max events per second fed to the chart (0 = unlimited)")
	burst := flag.Int("burst", 1, "burst size for -rate")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Println("Usage: scxmlrun [-rate N] [-burst N] <scxml-file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("failed to read %s: %v", flag.Arg(0), err)
	}

	doc, err := parser.Parse(data)
	if err != nil {
		log.Fatalf("failed to parse %s: %v", flag.Arg(0), err)
	}

	ctx := context.Background()
	sc, err := interpreter.Initialize(ctx, doc, validator.Config{
		SourceName: flag.Arg(0),
		Oracle:     oracle.DefaultOracle{},
	}, interpreter.Options{})
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	printConfiguration(sc)

	var feeder *driver.RateLimitedFeeder
	if *rate > 0 {
		feeder = driver.NewRateLimitedFeeder(*rate, *burst)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var in struct {
			Name    string         `json:"name"`
			Payload map[string]any `json:"payload"`
		}
		if err := json.Unmarshal(line, &in); err != nil {
			slog.WarnContext(ctx, "skipping malformed event line", "error", err)
			continue
		}
		ev := scxml.Event{Name: in.Name, Payload: in.Payload}

		if feeder != nil {
			sc, err = feeder.Feed(ctx, sc, ev)
			if err != nil {
				log.Fatalf("feed: %v", err)
			}
		} else {
			sc = sc.SendEvent(ctx, ev)
		}
		printConfiguration(sc)
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("reading stdin: %v", err)
	}
}

func printConfiguration(sc *interpreter.StateChart) {
	fmt.Printf("[%s] %v\n", sc.State(), sc.ActiveLeaves())
}
