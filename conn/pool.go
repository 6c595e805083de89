package conn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// PoolConfig specifies connection pool behavior.
type PoolConfig struct {
	// MinSize is the number of connections to pre-open (0 = none).
	MinSize int
	// MaxSize is the maximum number of open connections (0 = unlimited).
	MaxSize int
	// IdleTimeout closes connections idle longer than this (0 = never).
	IdleTimeout time.Duration
	// WaitTimeout bounds the wait for an available connection (0 = none).
	WaitTimeout time.Duration
}

// DefaultPoolConfig returns a reasonable default pool configuration.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MinSize:     1,
		MaxSize:     8,
		IdleTimeout: 5 * time.Minute,
		WaitTimeout: 10 * time.Second,
	}
}

var (
	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("connection pool is closed")
	// ErrPoolTimeout is returned when the wait for a connection times out.
	ErrPoolTimeout = errors.New("timeout waiting for available connection")
)

// Pool manages a set of reusable connections for concurrent access.
type Pool struct {
	config  PoolConfig
	factory func() (Conn, error)

	mu      sync.Mutex
	idle    []idleConn
	numOpen int
	waiters []chan Conn
	closed  bool

	stopCleaner chan struct{}
	cleanerDone chan struct{}
}

// idleConn tracks a pooled connection and when it went idle.
type idleConn struct {
	conn  Conn
	since time.Time
}

// NewPool creates a pool that opens connections through factory.
// If MinSize > 0 the pool is pre-warmed.
func NewPool(config PoolConfig, factory func() (Conn, error)) (*Pool, error) {
	if config.MaxSize > 0 && config.MinSize > config.MaxSize {
		return nil, fmt.Errorf("invalid pool config: MinSize (%d) > MaxSize (%d)", config.MinSize, config.MaxSize)
	}

	p := &Pool{
		config:      config,
		factory:     factory,
		stopCleaner: make(chan struct{}),
		cleanerDone: make(chan struct{}),
	}

	for i := 0; i < config.MinSize; i++ {
		c, err := factory()
		if err != nil {
			for _, ic := range p.idle {
				ic.conn.Close()
			}
			return nil, fmt.Errorf("pre-open connection %d/%d: %w", i+1, config.MinSize, err)
		}
		p.idle = append(p.idle, idleConn{conn: c, since: time.Now()})
		p.numOpen++
	}

	if config.IdleTimeout > 0 {
		go p.cleanIdle()
	} else {
		close(p.cleanerDone)
	}

	return p, nil
}

// Get acquires a connection. When the pool is at capacity it waits for one
// to be returned, bounded by WaitTimeout and the context.
func (p *Pool) Get(ctx context.Context) (Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}

	for len(p.idle) > 0 {
		ic := p.idle[len(p.idle)-1]
		p.idle = p.idle[:len(p.idle)-1]
		if ic.conn.IsOpen() {
			p.mu.Unlock()
			return ic.conn, nil
		}
		ic.conn.Close()
		p.numOpen--
	}

	if p.config.MaxSize == 0 || p.numOpen < p.config.MaxSize {
		p.numOpen++
		p.mu.Unlock()

		c, err := p.factory()
		if err != nil {
			p.mu.Lock()
			p.numOpen--
			p.mu.Unlock()
			return nil, fmt.Errorf("open connection: %w", err)
		}
		return c, nil
	}

	waiter := make(chan Conn, 1)
	p.waiters = append(p.waiters, waiter)
	p.mu.Unlock()

	waitCtx := ctx
	if p.config.WaitTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, p.config.WaitTimeout)
		defer cancel()
	}

	select {
	case c, ok := <-waiter:
		if !ok {
			return nil, ErrPoolClosed
		}
		return c, nil
	case <-waitCtx.Done():
		p.mu.Lock()
		for i, w := range p.waiters {
			if w == waiter {
				p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
				break
			}
		}
		p.mu.Unlock()

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrPoolTimeout
	}
}

// Put returns a connection to the pool. Dead connections are discarded.
func (p *Pool) Put(c Conn) {
	if c == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		c.Close()
		return
	}

	if !c.IsOpen() {
		c.Close()
		p.numOpen--
		return
	}

	// Hand off to a waiter before idling the connection.
	for len(p.waiters) > 0 {
		waiter := p.waiters[0]
		p.waiters = p.waiters[1:]
		select {
		case waiter <- c:
			return
		default:
			// Waiter gave up; try the next one.
		}
	}

	p.idle = append(p.idle, idleConn{conn: c, since: time.Now()})
}

// Close closes all pooled connections and rejects further acquisition.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true

	if p.config.IdleTimeout > 0 {
		close(p.stopCleaner)
	}

	for _, ic := range p.idle {
		ic.conn.Close()
	}
	p.idle = nil

	for _, waiter := range p.waiters {
		close(waiter)
	}
	p.waiters = nil
	p.mu.Unlock()

	<-p.cleanerDone
}

// PoolStats provides a snapshot of pool usage.
type PoolStats struct {
	Available int // connections idle in the pool
	InUse     int // connections currently handed out
	Total     int // total open connections
	Waiting   int // goroutines waiting for a connection
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Available: len(p.idle),
		InUse:     p.numOpen - len(p.idle),
		Total:     p.numOpen,
		Waiting:   len(p.waiters),
	}
}

// cleanIdle closes connections idle past IdleTimeout, keeping MinSize.
func (p *Pool) cleanIdle() {
	defer close(p.cleanerDone)

	ticker := time.NewTicker(p.config.IdleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.mu.Lock()
			now := time.Now()
			keep := p.idle[:0]
			for _, ic := range p.idle {
				if now.Sub(ic.since) < p.config.IdleTimeout || len(keep) < p.config.MinSize {
					keep = append(keep, ic)
				} else {
					ic.conn.Close()
					p.numOpen--
				}
			}
			p.idle = keep
			p.mu.Unlock()
		case <-p.stopCleaner:
			return
		}
	}
}
