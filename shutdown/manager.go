package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds the whole cleanup sequence.
const DefaultTimeout = 30 * time.Second

// Manager ties a cleanup Registry to OS signal handling. The first SIGINT
// or SIGTERM cancels the managed context so components can drain; a second
// signal forces an immediate exit.
type Manager struct {
	logger  *zap.Logger
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	registry *Registry
	sigChan  chan os.Signal
	exit     func(int)

	mu       sync.Mutex
	started  bool
	finished bool
	sig      os.Signal
}

// Option configures a Manager.
type Option func(*Manager)

// WithTimeout overrides the cleanup timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) { m.timeout = timeout }
}

// NewManager builds a manager. A nil logger disables logging.
func NewManager(logger *zap.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		logger:   logger.Named("shutdown"),
		timeout:  DefaultTimeout,
		ctx:      ctx,
		cancel:   cancel,
		registry: NewRegistry(),
		sigChan:  make(chan os.Signal, 2),
		exit:     os.Exit,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Context returns the context cancelled when shutdown begins.
func (m *Manager) Context() context.Context { return m.ctx }

// Register adds a cleanup function to the underlying registry.
func (m *Manager) Register(name string, priority int, fn Func) {
	m.registry.Register(name, priority, fn)
}

// Start begins listening for SIGINT and SIGTERM. Idempotent.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true

	signal.Notify(m.sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		count := 0
		for sig := range m.sigChan {
			count++
			if count == 1 {
				m.logger.Info("received shutdown signal",
					zap.String("signal", sig.String()))
				m.mu.Lock()
				m.sig = sig
				m.mu.Unlock()
				m.cancel()
				continue
			}
			m.logger.Warn("received second signal, forcing exit")
			m.exit(1)
		}
	}()
}

// Wait blocks until shutdown has been initiated.
func (m *Manager) Wait() { <-m.ctx.Done() }

// Signal returns the OS signal that initiated shutdown, or nil when
// shutdown was not signal-initiated.
func (m *Manager) Signal() os.Signal {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sig
}

// Shutdown cancels the managed context (if not already cancelled) and runs
// the cleanup registry under the configured timeout. Idempotent; returns an
// error when any cleanup function failed.
func (m *Manager) Shutdown() error {
	m.mu.Lock()
	if m.finished {
		m.mu.Unlock()
		return nil
	}
	m.finished = true
	started := m.started
	m.mu.Unlock()

	m.cancel()
	start := time.Now()
	m.logger.Info("running cleanup",
		zap.Int("handlers", m.registry.Count()),
		zap.Duration("timeout", m.timeout))

	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	errs := m.registry.Run(ctx)
	for _, err := range errs {
		m.logger.Error("cleanup handler failed", zap.Error(err))
	}

	if started {
		signal.Stop(m.sigChan)
	}

	m.logger.Info("shutdown complete",
		zap.Duration("duration", time.Since(start)),
		zap.Int("errors", len(errs)))
	if len(errs) > 0 {
		return fmt.Errorf("shutdown: %d cleanup handlers failed", len(errs))
	}
	return nil
}
