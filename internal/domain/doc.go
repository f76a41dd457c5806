// Package domain models normalized buoy telemetry as typed tabular records.
//
// # Data Source
//
// Moored buoy platforms multiplex their instrument payloads through a data
// concentrator logger (DCL). The DCL prefixes every payload line with its own
// timestamp and writes one text file per instrument per day. Instruments speak
// their own ad-hoc formats, and the logger happily records noise: power-up
// banners, truncated sentences, checksum trailers, and half-written lines cut
// off by brownouts. The parsers in internal/parser sort that out; this package
// defines what a clean result looks like.
//
// # DCL Conventions
//
// Timestamp format:
//
//	yyyy/mm/dd HH:MM:SS.fff  →  e.g. "2019/05/01 00:00:00.000", always UTC.
//	Every instrument family normalizes its timestamps into this token, so a
//	table cast needs exactly one datetime layout (see [TimestampLayout]).
//
// Missing values:
//
//	The meteorological package emits "Na " when a sensor channel drops out.
//	Parsers rewrite it to "NaN" before field matching so the float cast
//	produces a uniform not-a-number marker instead of inconsistent strings.
//
// # Schema and Table
//
// A [Schema] is pure configuration: an ordered list of column names with
// contiguous positions and a declared [Type] per column. Each instrument
// family defines exactly one schema ahead of time; there is no inference.
//
// A [Table] accumulates schema-conformant rows of raw string tokens, one per
// accepted line, in input order. [Table.Cast] converts every column to its
// declared type in a single pass at the end of a load call. A cast failure
// aborts the call: by then all malformed lines must already have been dropped
// or demoted to sentinel rows, so a bad token means the filters missed
// something and a partial table would hide that.
package domain
