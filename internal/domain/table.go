package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is the DCL timestamp token layout shared by every
// instrument family, e.g. "2019/05/01 00:00:00.000".
const TimestampLayout = "2006/01/02 15:04:05.000"

// Record is one ordered sequence of raw string tokens, timestamp first.
// Its length always equals the schema arity, even when values are sentinel.
type Record []string

// Table accumulates schema-conformant records for one load call (or across
// load calls, for the delimited family). Rows stay raw strings until Cast.
type Table struct {
	schema *Schema
	rows   []Record
}

// NewTable creates an empty table bound to a schema.
func NewTable(schema *Schema) *Table {
	return &Table{schema: schema}
}

// Schema returns the schema this table conforms to.
func (t *Table) Schema() *Schema { return t.schema }

// Len returns the number of accumulated rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the accumulated rows in input order.
func (t *Table) Rows() []Record { return t.rows }

// Append adds one record, enforcing the schema arity.
func (t *Table) Append(rec Record) error {
	if len(rec) != t.schema.Arity() {
		return fmt.Errorf("record has %d fields, schema arity is %d", len(rec), t.schema.Arity())
	}
	t.rows = append(t.rows, rec)
	return nil
}

// Extend concatenates another table's rows onto this one. Both tables must
// share the same schema instance.
func (t *Table) Extend(other *Table) error {
	if other.schema != t.schema {
		return fmt.Errorf("cannot extend table with rows from a different schema")
	}
	t.rows = append(t.rows, other.rows...)
	return nil
}

// TypedColumn holds one fully cast column. Exactly one of the value slices
// is populated, selected by Type.
type TypedColumn struct {
	Name    string
	Type    Type
	Strings []string
	Ints    []int64
	Floats  []float64
	Times   []time.Time
}

// Result is the typed output of a load call.
type Result struct {
	Instrument string
	Columns    []TypedColumn
	NumRows    int
	LoadedAt   time.Time
}

// Column returns the named typed column.
func (r *Result) Column(name string) (*TypedColumn, bool) {
	for i := range r.Columns {
		if r.Columns[i].Name == name {
			return &r.Columns[i], true
		}
	}
	return nil, false
}

// Cast converts every column to its declared type in one pass. Any cell that
// fails to parse aborts the whole cast; there is no per-row fallback here,
// malformed rows must have been filtered out upstream.
func (t *Table) Cast(instrument string) (*Result, error) {
	res := &Result{
		Instrument: instrument,
		Columns:    make([]TypedColumn, t.schema.Arity()),
		NumRows:    len(t.rows),
		LoadedAt:   clock.Now().UTC(),
	}
	for pos, col := range t.schema.Columns() {
		typed, err := t.castColumn(pos, col)
		if err != nil {
			return nil, err
		}
		res.Columns[pos] = typed
	}
	return res, nil
}

func (t *Table) castColumn(pos int, col Column) (TypedColumn, error) {
	typed := TypedColumn{Name: col.Name, Type: col.Type}
	switch col.Type {
	case TypeString:
		typed.Strings = make([]string, len(t.rows))
	case TypeInt:
		typed.Ints = make([]int64, len(t.rows))
	case TypeFloat:
		typed.Floats = make([]float64, len(t.rows))
	case TypeDatetime:
		typed.Times = make([]time.Time, len(t.rows))
	}

	for row, rec := range t.rows {
		tok := rec[pos]
		switch col.Type {
		case TypeString:
			typed.Strings[row] = tok
		case TypeInt:
			v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
			if err != nil {
				return typed, castError(col, row, tok, err)
			}
			typed.Ints[row] = v
		case TypeFloat:
			// strconv.ParseFloat accepts the "NaN" sentinel directly.
			v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
			if err != nil {
				return typed, castError(col, row, tok, err)
			}
			typed.Floats[row] = v
		case TypeDatetime:
			v, err := time.Parse(TimestampLayout, strings.TrimSpace(tok))
			if err != nil {
				return typed, castError(col, row, tok, err)
			}
			typed.Times[row] = v.UTC()
		}
	}
	return typed, nil
}

func castError(col Column, row int, tok string, err error) error {
	return fmt.Errorf("cast column %q row %d: value %q is not a valid %s: %w",
		col.Name, row, tok, col.Type, err)
}
