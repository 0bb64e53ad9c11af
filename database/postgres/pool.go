package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gastromatic/sqlstate"
)

// PoolState is the pgx pool variant of sqlstate.State. Acquisition
// suspends on the context instead of blocking, and released connections
// return to the pgx pool. The reflected namespace is identical to the one
// the blocking variant builds for the same schemas.
type PoolState struct {
	pool *pgxpool.Pool
	s    sqlstate.Namespace
}

// OpenPool connects a pgx pool, reflects each requested schema, and
// returns a ready PoolState. Like Open, reflection is all or nothing.
func OpenPool(ctx context.Context, dsn string, schemas map[string]string) (*PoolState, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}

	if err = pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres pool: %w", err)
	}

	ns, err := reflectNamespace(schemas, func(schema string) ([]*sqlstate.Table, error) {
		return reflectSchemaPool(ctx, pool, schema)
	})
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &PoolState{pool: pool, s: ns}, nil
}

// OpenPoolConfig validates the config, builds its DSN, and calls OpenPool.
func OpenPoolConfig(ctx context.Context, cfg sqlstate.Config, schemas map[string]string) (*PoolState, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return OpenPool(ctx, cfg.ConnString(), schemas)
}

// Engine exposes the underlying pool handle.
func (p *PoolState) Engine() *pgxpool.Pool {
	return p.pool
}

// S exposes the reflected namespace.
func (p *PoolState) S() sqlstate.Namespace {
	return p.s
}

// Acquire checks a connection out of the pool. The caller owns the
// returned PoolConn and must Release it.
func (p *PoolState) Acquire(ctx context.Context) (*PoolConn, error) {
	c, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	return &PoolConn{Conn: c, s: p.s}, nil
}

// With runs fn with an acquired connection and releases it on every exit
// path, including panics.
func (p *PoolState) With(ctx context.Context, fn func(*PoolConn) error) error {
	c, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer c.Release()

	return fn(c)
}

// Close closes the pool and waits for checked-out connections to be
// released.
func (p *PoolState) Close() {
	p.pool.Close()
}

// PoolConn is a scoped pgx connection with access to the reflected
// namespace. Release returns it to the pool.
type PoolConn struct {
	*pgxpool.Conn
	s sqlstate.Namespace
}

// S exposes the reflected namespace on the connection.
func (c *PoolConn) S() sqlstate.Namespace {
	return c.s
}
