package compactpdf

import (
	"errors"
	"runtime"
	"sync"
)

// Pool sizing constants.
const (
	// MinPoolSize ensures at least one worker is available.
	MinPoolSize = 1

	// MaxPoolSize caps concurrent converters (and Chrome instances, ~200MB each).
	MaxPoolSize = 8
)

// ConverterPool hands out Converters for parallel batch conversion.
// Converters are created lazily on first acquire by the factory, so each
// Chrome-backed converter owns its own browser.
type ConverterPool struct {
	size       int
	factory    func() (*Converter, error)
	converters []*Converter
	sem        chan *Converter
	mu         sync.Mutex
	created    int
	closed     bool
}

// NewConverterPool creates a pool with capacity for n converters built by
// factory. Converters are created when acquired, not at pool creation.
func NewConverterPool(n int, factory func() (*Converter, error)) *ConverterPool {
	if n < MinPoolSize {
		n = MinPoolSize
	}

	return &ConverterPool{
		size:       n,
		factory:    factory,
		converters: make([]*Converter, 0, n),
		sem:        make(chan *Converter, n),
	}
}

// Acquire gets a converter from the pool, creating one if capacity allows.
// Blocks if all converters are in use. Returns the factory error, in which
// case the capacity slot is given back, or ErrPoolClosed once Close has run.
func (p *ConverterPool) Acquire() (*Converter, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	select {
	case c := <-p.sem:
		p.mu.Unlock()
		return c, nil
	default:
	}

	if p.created < p.size {
		p.created++
		p.mu.Unlock()

		// Create outside the lock
		c, err := p.factory()

		p.mu.Lock()
		defer p.mu.Unlock()
		if err != nil {
			p.created--
			return nil, err
		}
		if p.closed {
			_ = c.Close()
			return nil, ErrPoolClosed
		}
		p.converters = append(p.converters, c)
		return c, nil
	}
	p.mu.Unlock()

	c, ok := <-p.sem
	if !ok {
		return nil, ErrPoolClosed
	}
	return c, nil
}

// Release returns a converter to the pool. The channel holds every converter
// the pool can create, so the send never blocks.
func (p *ConverterPool) Release(c *Converter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.sem <- c
}

// Close releases all converters. Idle converters still queued are dropped
// so later receives see the closed channel.
// Returns an aggregated error if multiple converters fail to close.
func (p *ConverterPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.sem)
	for range p.sem {
	}
	converters := p.converters
	p.mu.Unlock()

	var errs []error
	for _, c := range converters {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Size returns the pool capacity.
func (p *ConverterPool) Size() int {
	return p.size
}

// ResolvePoolSize determines the pool size.
// Priority: explicit workers > GOMAXPROCS-based calculation. Chrome
// converters get half the CPUs to leave headroom for browser processes.
func ResolvePoolSize(workers int, chrome bool) int {
	if workers > 0 {
		return min(workers, MaxPoolSize)
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	n := runtime.GOMAXPROCS(0)
	if chrome {
		n /= 2
	}
	return max(MinPoolSize, min(n, MaxPoolSize))
}
