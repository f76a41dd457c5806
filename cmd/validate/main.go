// Command validate parses instrument dump files named on the command line
// and prints a summary of what a load call would produce: row count and a
// per-column breakdown with ranges and sentinel counts.
//
// Usage:
//
//	go run ./cmd/validate -instrument metbk data/metbk/*.log
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
	"github.com/oceanbight/buoy-telemetry-etl/internal/parser"
	"github.com/oceanbight/buoy-telemetry-etl/internal/pipeline"
)

func main() {
	instrument := flag.String("instrument", "", "instrument family: metbk, wavss, or velpt")
	strict := flag.Bool("strict", false, "metbk only: drop timestamp-only lines instead of sentinel-filling")
	flag.Parse()

	if *instrument == "" || flag.NArg() == 0 {
		flag.Usage()
		fmt.Fprintln(os.Stderr, "expected -instrument and at least one file path")
		os.Exit(2)
	}

	logger := observability.NewLogger("warn", "text")
	metrics := observability.NewMetricsForTesting()

	var loader pipeline.Loader
	switch *instrument {
	case parser.InstrumentMetbk:
		loader = parser.NewMetbk(logger, metrics, *strict)
	case parser.InstrumentWavss:
		loader = parser.NewWavss(logger, metrics)
	case parser.InstrumentVelpt:
		loader = parser.NewVelpt(logger, metrics)
	default:
		fmt.Fprintf(os.Stderr, "unknown instrument %q\n", *instrument)
		os.Exit(2)
	}

	res, err := loader.Load(flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "load failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("instrument: %s\n", res.Instrument)
	fmt.Printf("files:      %d\n", flag.NArg())
	fmt.Printf("rows:       %d\n", res.NumRows)
	fmt.Println()
	for _, col := range res.Columns {
		fmt.Printf("  %-30s %-9s %s\n", col.Name, col.Type, summarize(col))
	}
}

// summarize renders a one-line column summary.
func summarize(col domain.TypedColumn) string {
	switch col.Type {
	case domain.TypeFloat:
		return summarizeFloats(col.Floats)
	case domain.TypeInt:
		if len(col.Ints) == 0 {
			return "-"
		}
		lo, hi := col.Ints[0], col.Ints[0]
		for _, v := range col.Ints {
			lo, hi = min(lo, v), max(hi, v)
		}
		return fmt.Sprintf("min=%d max=%d", lo, hi)
	case domain.TypeDatetime:
		if len(col.Times) == 0 {
			return "-"
		}
		return fmt.Sprintf("first=%s last=%s",
			col.Times[0].Format(time.RFC3339),
			col.Times[len(col.Times)-1].Format(time.RFC3339))
	default:
		return fmt.Sprintf("%d values", len(col.Strings))
	}
}

func summarizeFloats(vals []float64) string {
	if len(vals) == 0 {
		return "-"
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	nan := 0
	for _, v := range vals {
		if math.IsNaN(v) {
			nan++
			continue
		}
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	if nan == len(vals) {
		return fmt.Sprintf("all %d values NaN", nan)
	}
	return fmt.Sprintf("min=%.3f max=%.3f nan=%d", lo, hi, nan)
}
