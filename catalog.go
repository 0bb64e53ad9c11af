package sqlstate

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// Dialect identifies the SQL flavor a table was reflected from. Statement
// builders use it for parameter placeholders.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

func (d Dialect) placeholder(i int) string {
	if d == DialectSQLite {
		return "?"
	}
	return "$" + strconv.Itoa(i)
}

// Column describes a single reflected column.
type Column struct {
	Name         string  `json:"name"`
	DataType     string  `json:"data_type"`
	Nullable     bool    `json:"nullable"`
	Default      *string `json:"default,omitempty"`
	Position     int     `json:"position"`
	IsPrimaryKey bool    `json:"is_primary_key"`
}

// Table is the reflected structure of one table or view. Columns are kept
// in ordinal order.
type Table struct {
	Schema  string   `json:"schema,omitempty"`
	Name    string   `json:"name"`
	IsView  bool     `json:"is_view"`
	Dialect Dialect  `json:"-"`
	Columns []Column `json:"columns"`
}

// Column returns the named column or ErrColumnNotFound.
func (t *Table) Column(name string) (*Column, error) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrColumnNotFound, t.Name, name)
}

// ColumnNames returns the column names in ordinal order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i := range t.Columns {
		names[i] = t.Columns[i].Name
	}
	return names
}

// PrimaryKey returns the primary key columns in ordinal order.
func (t *Table) PrimaryKey() []Column {
	var pk []Column
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			pk = append(pk, c)
		}
	}
	return pk
}

// qualifiedName renders the quoted, schema-qualified table name. Sqlite
// tables carry no schema and render unqualified.
func (t *Table) qualifiedName() string {
	if t.Schema == "" {
		return QuoteIdentifier(t.Name)
	}
	return QuoteIdentifier(t.Schema) + "." + QuoteIdentifier(t.Name)
}

// Schema is a reflected-table namespace: every table and view of one
// database schema, keyed by name.
type Schema struct {
	Name   string
	tables map[string]*Table
}

// NewSchema builds a Schema from reflected tables.
func NewSchema(name string, tables []*Table) *Schema {
	m := make(map[string]*Table, len(tables))
	for _, t := range tables {
		m[t.Name] = t
	}
	return &Schema{Name: name, tables: m}
}

// Table returns the named table or ErrTableNotFound.
func (s *Schema) Table(name string) (*Table, error) {
	t, ok := s.tables[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrTableNotFound, s.Name, name)
	}
	return t, nil
}

// Tables returns all reflected tables sorted by name.
func (s *Schema) Tables() []*Table {
	tables := make([]*Table, 0, len(s.tables))
	for _, name := range s.TableNames() {
		tables = append(tables, s.tables[name])
	}
	return tables
}

// TableNames returns the sorted table names.
func (s *Schema) TableNames() []string {
	return slices.Sorted(maps.Keys(s.tables))
}

// Namespace maps a caller-chosen attribute name to a reflected schema.
type Namespace map[string]*Schema

// Schema returns the schema registered under the given attribute name or
// ErrSchemaNotFound.
func (n Namespace) Schema(name string) (*Schema, error) {
	s, ok := n[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, name)
	}
	return s, nil
}

// SchemaNames returns the sorted attribute names.
func (n Namespace) SchemaNames() []string {
	return slices.Sorted(maps.Keys(n))
}
