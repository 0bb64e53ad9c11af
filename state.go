package sqlstate

import (
	"context"
	"database/sql"
	"fmt"
)

// State owns a database/sql engine and the namespace reflected from it.
// It is built once at startup by a backend package and is not mutated
// afterwards; acquiring connections does not alter it.
type State struct {
	db *sql.DB
	s  Namespace
}

// NewState wraps an open engine and a reflected namespace. Backend
// packages call this after reflection completes; a State never exists
// with a partially reflected namespace.
func NewState(db *sql.DB, s Namespace) *State {
	return &State{db: db, s: s}
}

// Engine exposes the underlying engine handle.
func (s *State) Engine() *sql.DB {
	return s.db
}

// S exposes the reflected namespace.
func (s *State) S() Namespace {
	return s.s
}

// Acquire checks a connection out of the engine's pool. The caller owns
// the returned Conn and must Close it to release the connection.
func (s *State) Acquire(ctx context.Context) (*Conn, error) {
	c, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &Conn{Conn: c, s: s.s}, nil
}

// With runs fn with an acquired connection and releases it on every exit
// path, including panics.
func (s *State) With(ctx context.Context, fn func(*Conn) error) error {
	c, err := s.Acquire(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return fn(c)
}

// Close closes the engine and its pool.
func (s *State) Close() error {
	return s.db.Close()
}

// Conn is a scoped connection with access to the reflected namespace.
// Close returns the connection to the engine's pool.
type Conn struct {
	*sql.Conn
	s Namespace
}

// S exposes the reflected namespace on the connection.
func (c *Conn) S() Namespace {
	return c.s
}
