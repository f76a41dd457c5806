package domain

import "fmt"

// Type is the declared semantic type of a schema column.
type Type int

const (
	TypeString Type = iota
	TypeInt
	TypeFloat
	TypeDatetime
)

// String returns the lowercase type name used in error messages and DDL mapping.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeDatetime:
		return "datetime"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Column pairs a column name with its declared type.
type Column struct {
	Name string
	Type Type
}

// Schema is the ordered name/type/position definition for one instrument
// family's output columns. Positions are assigned contiguously (0..N-1) in
// declaration order; duplicate names are rejected at construction.
type Schema struct {
	columns   []Column
	positions map[string]int
}

// NewSchema builds a Schema from an ordered column list.
func NewSchema(columns ...Column) (*Schema, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("schema requires at least one column")
	}
	positions := make(map[string]int, len(columns))
	for i, c := range columns {
		if c.Name == "" {
			return nil, fmt.Errorf("schema column %d has an empty name", i)
		}
		if _, ok := positions[c.Name]; ok {
			return nil, fmt.Errorf("schema column %q declared twice", c.Name)
		}
		positions[c.Name] = i
	}
	return &Schema{columns: columns, positions: positions}, nil
}

// MustSchema is NewSchema for static schema definitions; it panics on error.
func MustSchema(columns ...Column) *Schema {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Arity returns the fixed number of fields per record.
func (s *Schema) Arity() int { return len(s.columns) }

// Columns returns the ordered column definitions.
func (s *Schema) Columns() []Column { return s.columns }

// Names returns the column names in position order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Position returns the position of a named column.
func (s *Schema) Position(name string) (int, bool) {
	i, ok := s.positions[name]
	return i, ok
}

// TypeOf returns the declared type of a named column.
func (s *Schema) TypeOf(name string) (Type, bool) {
	i, ok := s.positions[name]
	if !ok {
		return TypeString, false
	}
	return s.columns[i].Type, true
}
