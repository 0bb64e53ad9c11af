package sqlstate

import "errors"

var (
	// ErrSchemaNotFound is returned when a schema is missing from the
	// database catalog or from a reflected namespace
	ErrSchemaNotFound = errors.New("schema not found")
	// ErrTableNotFound is returned when a table is missing from a reflected schema
	ErrTableNotFound = errors.New("table not found")
	// ErrColumnNotFound is returned when a column is missing from a reflected table
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidIdentifier is returned when a caller-chosen attribute name fails validation
	ErrInvalidIdentifier = errors.New("invalid identifier")
	// ErrNoPrimaryKey is returned by statement builders that need a key column
	ErrNoPrimaryKey = errors.New("table has no primary key")
)
