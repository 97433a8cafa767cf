package ssdb

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/shelocks/ssdb/proto"
)

// Config holds configuration for an SSDB client.
type Config struct {
	// Host is the server hostname or IP. Defaults to "127.0.0.1".
	Host string

	// Port is the server TCP port. Defaults to 8888.
	Port int

	// ConnectTimeout bounds each TCP dial. Defaults to 5 seconds.
	ConnectTimeout time.Duration

	// ReadTimeout bounds each request/reply exchange when the context
	// carries no deadline. Zero means no limit.
	ReadTimeout time.Duration

	// MaxSize is the maximum number of connections in the pool.
	// Defaults to 1.
	MaxSize int32

	// MaxConnLifetime is the maximum duration a connection can be reused.
	// Zero means no limit. Enforced by the health check loop.
	MaxConnLifetime time.Duration

	// MaxConnIdleTime is the maximum duration a connection can sit idle
	// before being closed. Zero means no limit.
	MaxConnIdleTime time.Duration

	// HealthCheckInterval is how often idle connections are pinged and
	// pruned. Zero disables health checks.
	HealthCheckInterval time.Duration

	// Pool selects the pool implementation. Defaults to NewChannelPool;
	// NewPuddlePool is the fair-ordering alternative.
	Pool PoolFactory

	// CircuitBreakerSettings, when non-nil, wraps every exchange in a
	// circuit breaker so a dead server fails fast instead of eating a
	// dial timeout per call.
	CircuitBreakerSettings *gobreaker.Settings

	// for testing purposes only
	constructor func(ctx context.Context) (*Connection, error)
}

func (c Config) addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 8888
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Client is an SSDB client backed by a connection pool. One method per server
// command; see commands.go. All methods are safe for concurrent use.
//
// No call is ever retried automatically: a ConnError means the pooled
// connection was discarded and the next call will dial a fresh one, but the
// failed command is the caller's to re-issue.
type Client struct {
	pool    Pool
	breaker *gobreaker.CircuitBreaker[proto.Result]

	maxConnLifetime     time.Duration
	maxConnIdleTime     time.Duration
	healthCheckInterval time.Duration
	stopHealthCheck     chan struct{}

	stats clientStatsCollector
}

// NewClient creates a client for the server in config. Connections are
// dialed lazily, so NewClient succeeds even while the server is down.
func NewClient(config Config) (*Client, error) {
	addr := config.addr()

	connectTimeout := config.ConnectTimeout
	if connectTimeout == 0 {
		connectTimeout = 5 * time.Second
	}

	constructor := config.constructor
	if constructor == nil {
		constructor = func(ctx context.Context) (*Connection, error) {
			dialer := net.Dialer{Timeout: connectTimeout}
			netConn, err := dialer.DialContext(ctx, "tcp", addr)
			if err != nil {
				return nil, &proto.ConnError{Op: "dial", Err: err}
			}
			return NewConnection(netConn, config.ReadTimeout), nil
		}
	}

	poolFactory := config.Pool
	if poolFactory == nil {
		poolFactory = NewChannelPool
	}

	maxSize := config.MaxSize
	if maxSize <= 0 {
		maxSize = 1
	}

	pool, err := poolFactory(constructor, maxSize)
	if err != nil {
		return nil, err
	}

	client := &Client{
		pool:                pool,
		maxConnLifetime:     config.MaxConnLifetime,
		maxConnIdleTime:     config.MaxConnIdleTime,
		healthCheckInterval: config.HealthCheckInterval,
		stopHealthCheck:     make(chan struct{}),
	}

	if config.CircuitBreakerSettings != nil {
		client.breaker = gobreaker.NewCircuitBreaker[proto.Result](*config.CircuitBreakerSettings)
	}

	if config.HealthCheckInterval > 0 {
		go client.healthCheckLoop()
	}

	return client, nil
}

// Close destroys all pooled connections.
func (c *Client) Close() {
	if c.healthCheckInterval > 0 {
		close(c.stopHealthCheck)
	}
	c.pool.Close()
}

// Do issues an arbitrary command and interprets the reply with the given
// shape. The typed methods in commands.go cover the standard command set;
// Do is the escape hatch for server extensions.
func (c *Client) Do(ctx context.Context, shape proto.Shape, cmd string, args ...any) (proto.Result, error) {
	req, err := proto.NewRequest(cmd, args...)
	if err != nil {
		return proto.Result{}, err
	}
	return c.exec(ctx, req, shape)
}

// exec runs one exchange on a pooled connection, wrapped in the circuit
// breaker when configured.
func (c *Client) exec(ctx context.Context, req *proto.Request, shape proto.Shape) (proto.Result, error) {
	if c.breaker != nil {
		result, err := c.breaker.Execute(func() (proto.Result, error) {
			return c.execDirect(ctx, req, shape)
		})
		if err != nil {
			return result, err
		}
		return result, nil
	}

	return c.execDirect(ctx, req, shape)
}

// execDirect acquires a connection, runs the exchange, and releases or
// destroys the connection depending on whether the error broke it.
func (c *Client) execDirect(ctx context.Context, req *proto.Request, shape proto.Shape) (proto.Result, error) {
	resource, err := c.pool.Acquire(ctx)
	if err != nil {
		c.stats.recordError()
		return proto.Result{}, err
	}

	result, err := resource.Value().Do(ctx, req, shape)
	if err != nil {
		c.stats.recordError()
		if proto.ShouldCloseConnection(err) {
			resource.Destroy()
		} else {
			resource.Release()
		}
		return result, err
	}

	resource.Release()
	return result, nil
}

// healthCheckLoop periodically prunes stale idle connections.
func (c *Client) healthCheckLoop() {
	ticker := time.NewTicker(c.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopHealthCheck:
			return
		case <-ticker.C:
			c.checkIdleConnections()
		}
	}
}

// checkIdleConnections inspects every idle connection and destroys those past
// their lifetime or idle limits, or that fail a ping.
func (c *Client) checkIdleConnections() {
	now := time.Now()

	for _, res := range c.pool.AcquireAllIdle() {
		if c.maxConnLifetime > 0 && now.Sub(res.CreationTime()) > c.maxConnLifetime {
			res.Destroy()
			continue
		}

		if c.maxConnIdleTime > 0 && res.IdleDuration() > c.maxConnIdleTime {
			res.Destroy()
			continue
		}

		if err := c.healthCheck(res.Value()); err != nil {
			res.Destroy()
			continue
		}

		res.ReleaseUnused()
	}
}

// healthCheck pings a connection.
func (c *Client) healthCheck(conn *Connection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := proto.NewRequest("ping")
	if err != nil {
		return err
	}

	result, err := conn.Do(ctx, req, proto.ShapeStatusOnly)
	if err != nil {
		return err
	}
	if !result.Found {
		return fmt.Errorf("ssdb: ping returned not_found")
	}
	return nil
}

// Stats returns a snapshot of client operation counters.
func (c *Client) Stats() ClientStats {
	return c.stats.snapshot()
}

// PoolStats returns a snapshot of the connection pool counters.
func (c *Client) PoolStats() PoolStats {
	return c.pool.Stats()
}

// BreakerState returns the circuit breaker state, or StateClosed when no
// breaker is configured.
func (c *Client) BreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}
