package checker

import (
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Coordinator carries the cooperative stop flag for a run. A stop never
// aborts an in-flight lookup; workers poll Stopped at each item boundary
// and exit before starting the next mod.
type Coordinator struct {
	logger  *slog.Logger
	stopped atomic.Bool
}

// NewCoordinator creates a coordinator. A nil logger falls back to the
// default logger.
func NewCoordinator(logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{logger: logger.With("component", "coordinator")}
}

// Arm clears any stop left over from a previous run and installs an
// interrupt handler for this one. The returned function releases the
// handler and is safe to call more than once.
func (c *Coordinator) Arm() func() {
	c.stopped.Store(false)

	sigCh := make(chan os.Signal, 1)
	done := make(chan struct{})
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			c.logger.Warn("Stop requested, letting in-flight lookups finish.", "signal", sig.String())
			c.Trigger()
		case <-done:
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(sigCh)
			close(done)
		})
	}
}

// Trigger requests a cooperative stop. Workers notice at the next item
// boundary.
func (c *Coordinator) Trigger() {
	c.stopped.Store(true)
}

// Stopped reports whether a stop has been requested.
func (c *Coordinator) Stopped() bool {
	return c.stopped.Load()
}

// Reset clears the stop flag so the coordinator can serve another run.
func (c *Coordinator) Reset() {
	c.stopped.Store(false)
}
