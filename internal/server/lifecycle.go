// Package server runs the server's long-lived services: start in order,
// stop in reverse on a signal, context cancellation, or the first service
// that exits.
package server

import (
	"context"
	"fmt"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultStopTimeout bounds how long Run waits for services to return after
// they have been stopped.
const DefaultStopTimeout = 10 * time.Second

// Service represents a long-running component that can be started and stopped.
type Service interface {
	// Start runs the service. It blocks until the service is stopped or fails.
	// Returning early, even with a nil error, shuts the server down.
	Start() error
	// Stop asks a running Start to return.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function, if any.
func (f *FuncService) Stop() {
	if f.StopFn != nil {
		f.StopFn()
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
type Lifecycle struct {
	logger      *zap.Logger
	stopTimeout time.Duration

	mu       sync.Mutex
	services []namedService
}

type namedService struct {
	name    string
	service Service
}

type serviceExit struct {
	name string
	err  error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{
		logger:      logger,
		stopTimeout: DefaultStopTimeout,
	}
}

// SetStopTimeout changes how long Run waits for stopped services to return.
func (l *Lifecycle) SetStopTimeout(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stopTimeout = d
}

// Add registers a named service. Services start in the order they are added.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	if name == "" || svc == nil {
		panic("server.Lifecycle.Add: name and service are required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Names returns the registered service names in start order.
func (l *Lifecycle) Names() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.services))
	for i, ns := range l.services {
		names[i] = ns.name
	}
	return names
}

// Run starts every service and blocks until SIGINT, SIGTERM, cancellation of
// ctx, or the first service returning. Services are then stopped in reverse
// order.
//
// Postcondition: Stop has been called on every service. Returns the first
// service error, or nil.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()

	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	l.mu.Lock()
	services := slices.Clone(l.services)
	timeout := l.stopTimeout
	l.mu.Unlock()

	exits := make(chan serviceExit, len(services))
	for _, ns := range services {
		l.logger.Info("starting service", zap.String("service", ns.name))
		go func() {
			exits <- serviceExit{name: ns.name, err: ns.service.Start()}
		}()
	}
	l.logger.Info("all services started",
		zap.Int("count", len(services)),
		zap.Duration("startup", time.Since(start)),
	)

	var firstErr error
	pending := len(services)
	record := func(ex serviceExit) {
		pending--
		if ex.err == nil {
			l.logger.Info("service exited", zap.String("service", ex.name))
			return
		}
		l.logger.Error("service failed", zap.String("service", ex.name), zap.Error(ex.err))
		if firstErr == nil {
			firstErr = fmt.Errorf("service %s: %w", ex.name, ex.err)
		}
	}

	if pending == 0 {
		<-ctx.Done()
		l.logger.Info("context cancelled, shutting down")
	} else {
		select {
		case <-ctx.Done():
			l.logger.Info("context cancelled, shutting down", zap.Error(context.Cause(ctx)))
		case ex := <-exits:
			record(ex)
		}
	}

	l.shutdown(services)

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for pending > 0 {
		select {
		case ex := <-exits:
			record(ex)
		case <-deadline.C:
			l.logger.Warn("services still running after stop", zap.Int("pending", pending))
			pending = 0
		}
	}

	l.logger.Info("shutdown complete", zap.Duration("total_uptime", time.Since(start)))
	return firstErr
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for _, ns := range slices.Backward(services) {
		svcStart := time.Now()
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
		l.logger.Info("service stopped",
			zap.String("service", ns.name),
			zap.Duration("elapsed", time.Since(svcStart)),
		)
	}
	l.logger.Info("all services stopped", zap.Duration("shutdown_elapsed", time.Since(shutdownStart)))
}
