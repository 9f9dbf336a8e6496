// errs.go provides a thread-safe error collector. The parser is the one
// pipeline stage that accumulates multiple diagnostics before aborting
// (spec: error recovery resynchronizes to the next statement boundary and
// keeps going); this type is adapted from the teacher's worker-thread
// perror collector even though the parser itself runs on a single goroutine
// pair (lexer producer, parser consumer) rather than a worker pool.
package util

import "sync"

// Collector buffers error messages reported during a single pass.
type Collector struct {
	listen chan error
	stop   chan error
	errors []error
	mx     sync.Mutex
}

const defaultBufferSize = 16

// NewCollector returns a *Collector with n pre-allocated slots for errors.
func NewCollector(n int) *Collector {
	if n < 1 {
		n = defaultBufferSize
	}
	c := &Collector{
		listen: make(chan error),
		stop:   make(chan error),
		errors: make([]error, 0, n),
	}
	go c.run()
	return c
}

func (c *Collector) run() {
	defer close(c.listen)
	for {
		select {
		case err := <-c.listen:
			c.mx.Lock()
			c.errors = append(c.errors, err)
			c.mx.Unlock()
		case <-c.stop:
			return
		}
	}
}

// Len returns the number of buffered errors.
func (c *Collector) Len() int {
	c.mx.Lock()
	defer c.mx.Unlock()
	return len(c.errors)
}

// Stop ends the collector's listener goroutine. Must be called exactly once.
func (c *Collector) Stop() {
	defer close(c.stop)
	c.stop <- nil
}

// Append sends err to the collector. Nil errors are ignored.
func (c *Collector) Append(err error) {
	if err != nil {
		c.listen <- err
	}
}

// All returns every buffered error collected so far.
func (c *Collector) All() []error {
	c.mx.Lock()
	defer c.mx.Unlock()
	out := make([]error, len(c.errors))
	copy(out, c.errors)
	return out
}
