package ssdb

import (
	"context"
	"time"
)

// Pool manages a set of Connections to one server. Acquire hands a connection
// to exactly one caller at a time; since every connection serializes its own
// exchanges, one connection per concurrent caller is the concurrency model.
type Pool interface {
	// Acquire returns a connection resource, creating one if the pool is
	// below its size limit, or blocking until one is released.
	Acquire(ctx context.Context) (Resource, error)

	// AcquireAllIdle returns all currently idle resources, for health
	// checking. Each must be released or destroyed by the caller.
	AcquireAllIdle() []Resource

	// Close destroys all connections. Outstanding resources are closed on
	// release.
	Close()

	// Stats returns a snapshot of pool statistics.
	Stats() PoolStats
}

// Resource is a pooled connection lease.
type Resource interface {
	// Value returns the underlying connection.
	Value() *Connection

	// Release returns the connection to the pool for reuse.
	Release()

	// ReleaseUnused returns the connection without updating its idle
	// timestamps. Health checks use this so they don't keep stale
	// connections looking fresh.
	ReleaseUnused()

	// Destroy closes the connection and removes it from the pool.
	Destroy()

	// CreationTime returns when the connection was created.
	CreationTime() time.Time

	// IdleDuration returns how long the connection has been idle.
	IdleDuration() time.Duration
}

// PoolFactory builds a Pool from a connection constructor and a size limit.
type PoolFactory func(constructor func(ctx context.Context) (*Connection, error), maxSize int32) (Pool, error)
