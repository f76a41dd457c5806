// Package parser turns raw instrument dump files into typed telemetry tables.
//
// Each instrument family gets its own loader built from the same three
// stages: a line filter deciding what a line is worth, a field extractor
// recovering a timestamp plus a fixed-arity token list, and an assembler
// accumulating records file by file before a single cast pass.
//
// Line classification is an explicit tagged result ([ClassifiedLine]), not
// error-driven control flow: the assembler switches on the kind and never
// treats an ordinary "this line is junk" decision as an error.
package parser
