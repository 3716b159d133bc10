// Package schema builds and holds immutable point-in-time descriptions of
// database tables. A Snapshot is created whole, never mutated; refreshing
// means building a new one and swapping the pointer.
package schema

import (
	"fmt"
	"strings"
)

const FormatVersion = "1.0"

// ColumnDescriptor describes one introspected column. Immutable once built.
type ColumnDescriptor struct {
	Name            string
	DeclaredType    string
	Nullable        bool
	Default         string
	Description     string
	Characteristics string
}

// TableDescriptor describes one table: its columns in introspection order and
// a bounded set of sample rows. Column names are unique within a table.
type TableDescriptor struct {
	Name        string
	Columns     []ColumnDescriptor
	Description string
	ColumnGuide string
	SampleRows  []map[string]string
}

// Column returns the descriptor for a named column, or nil.
func (t *TableDescriptor) Column(name string) *ColumnDescriptor {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// ColumnNames returns the column names in introspection order.
func (t *TableDescriptor) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the table contains a column with this name.
func (t *TableDescriptor) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// Snapshot is the full introspected schema plus engine metadata. Either all
// columns of a table made it in, or the table was omitted entirely.
type Snapshot struct {
	Engine        string
	FormatVersion string
	tables        map[string]*TableDescriptor
	order         []string
}

// NewSnapshot assembles a snapshot from fully built table descriptors,
// preserving the given order.
func NewSnapshot(engine string, tables []*TableDescriptor) *Snapshot {
	s := &Snapshot{
		Engine:        engine,
		FormatVersion: FormatVersion,
		tables:        make(map[string]*TableDescriptor, len(tables)),
	}
	for _, t := range tables {
		if _, exists := s.tables[t.Name]; exists {
			continue
		}
		s.tables[t.Name] = t
		s.order = append(s.order, t.Name)
	}
	return s
}

// Table returns the descriptor for a named table, or nil.
func (s *Snapshot) Table(name string) *TableDescriptor {
	return s.tables[name]
}

// TableNames returns the table names in snapshot order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)
	return names
}

// Len returns the number of tables in the snapshot.
func (s *Snapshot) Len() int { return len(s.order) }

// Render converts the snapshot into the plain-text layout embedded in the
// full-query generation prompt and shown by the repl "schema" command.
func (s *Snapshot) Render() string {
	if s == nil || len(s.order) == 0 {
		return "no schema information available"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "=== %s schema (%d table(s)) ===\n", s.Engine, len(s.order))
	for _, name := range s.order {
		t := s.tables[name]
		fmt.Fprintf(&b, "\nTable: %s\n", t.Name)
		if t.Description != "" {
			fmt.Fprintf(&b, "Description: %s\n", t.Description)
		}
		if t.ColumnGuide != "" {
			fmt.Fprintf(&b, "Column guide: %s\n", t.ColumnGuide)
		}
		b.WriteString("Columns:\n")
		for _, c := range t.Columns {
			nullable := "NULL"
			if !c.Nullable {
				nullable = "NOT NULL"
			}
			fmt.Fprintf(&b, "  - %s: %s (%s)", c.Name, c.DeclaredType, nullable)
			if c.Description != "" {
				fmt.Fprintf(&b, " - %s", c.Description)
			}
			b.WriteString("\n")
			if c.Characteristics != "" {
				fmt.Fprintf(&b, "    characteristics: %s\n", c.Characteristics)
			}
		}
		if len(t.SampleRows) > 0 {
			b.WriteString("Sample rows:\n")
			for i, row := range t.SampleRows {
				parts := make([]string, 0, len(row))
				for _, col := range t.Columns {
					if v, ok := row[col.Name]; ok {
						parts = append(parts, fmt.Sprintf("%s=%s", col.Name, v))
					}
				}
				fmt.Fprintf(&b, "  %d. %s\n", i+1, strings.Join(parts, ", "))
			}
		}
	}
	return b.String()
}
