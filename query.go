package sqlstate

import (
	"fmt"
	"strings"
)

// Thin statement builders over reflected tables. They render driver-ready
// SQL with quoted identifiers and positional placeholders; executing the
// statements stays with the caller and the underlying driver.

// SelectSQL renders a SELECT for the given columns, or for all reflected
// columns when none are given.
func (t *Table) SelectSQL(columns ...string) (string, error) {
	cols, err := t.resolveColumns(columns)
	if err != nil {
		return "", fmt.Errorf("select %s: %w", t.Name, err)
	}

	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdentifier(c.Name)
	}

	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), t.qualifiedName()), nil
}

// InsertSQL renders an INSERT for the given columns, or for all reflected
// columns when none are given.
func (t *Table) InsertSQL(columns ...string) (string, error) {
	cols, err := t.resolveColumns(columns)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", t.Name, err)
	}

	quoted := make([]string, len(cols))
	placeholders := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = QuoteIdentifier(c.Name)
		placeholders[i] = t.Dialect.placeholder(i + 1)
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.qualifiedName(), strings.Join(quoted, ", "), strings.Join(placeholders, ", ")), nil
}

// UpdateSQL renders an UPDATE setting the given columns (all non-key
// columns when none are given), keyed on the table's primary key.
func (t *Table) UpdateSQL(columns ...string) (string, error) {
	pk := t.PrimaryKey()
	if len(pk) == 0 {
		return "", fmt.Errorf("update %s: %w", t.Name, ErrNoPrimaryKey)
	}

	var cols []Column
	if len(columns) == 0 {
		for _, c := range t.Columns {
			if !c.IsPrimaryKey {
				cols = append(cols, c)
			}
		}
		if len(cols) == 0 {
			return "", fmt.Errorf("update %s: no updatable columns", t.Name)
		}
	} else {
		var err error
		cols, err = t.resolveColumns(columns)
		if err != nil {
			return "", fmt.Errorf("update %s: %w", t.Name, err)
		}
	}

	assignments := make([]string, len(cols))
	n := 0
	for i, c := range cols {
		n++
		assignments[i] = QuoteIdentifier(c.Name) + " = " + t.Dialect.placeholder(n)
	}

	where, _ := t.primaryKeyPredicate(n)

	return fmt.Sprintf("UPDATE %s SET %s WHERE %s",
		t.qualifiedName(), strings.Join(assignments, ", "), where), nil
}

// DeleteSQL renders a DELETE keyed on the table's primary key.
func (t *Table) DeleteSQL() (string, error) {
	if len(t.PrimaryKey()) == 0 {
		return "", fmt.Errorf("delete %s: %w", t.Name, ErrNoPrimaryKey)
	}

	where, _ := t.primaryKeyPredicate(0)
	return fmt.Sprintf("DELETE FROM %s WHERE %s", t.qualifiedName(), where), nil
}

// resolveColumns maps column names to reflected columns, defaulting to the
// full column set.
func (t *Table) resolveColumns(names []string) ([]Column, error) {
	if len(names) == 0 {
		return t.Columns, nil
	}

	cols := make([]Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols = append(cols, *c)
	}
	return cols, nil
}

// primaryKeyPredicate renders "pk1 = $n AND pk2 = $n+1", continuing the
// placeholder numbering from n.
func (t *Table) primaryKeyPredicate(n int) (string, int) {
	pk := t.PrimaryKey()
	parts := make([]string, len(pk))
	for i, c := range pk {
		n++
		parts[i] = QuoteIdentifier(c.Name) + " = " + t.Dialect.placeholder(n)
	}
	return strings.Join(parts, " AND "), n
}
