package observability

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

// ShutdownFunc releases one resource during shutdown
type ShutdownFunc func(context.Context) error

type shutdownHook struct {
	name string
	fn   ShutdownFunc
}

// ShutdownManager coordinates graceful teardown: it stops the main HTTP
// server first, then runs the registered hooks concurrently under a
// shared deadline.
type ShutdownManager struct {
	logger  *Logger
	server  *http.Server
	hooks   []shutdownHook
	timeout time.Duration
	mu      sync.Mutex
}

// NewShutdownManager creates a shutdown manager for the given server
func NewShutdownManager(logger *Logger, server *http.Server, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &ShutdownManager{
		logger:  logger.Named("shutdown"),
		server:  server,
		timeout: timeout,
	}
}

// RegisterShutdownFunc registers a named hook to run during shutdown
func (sm *ShutdownManager) RegisterShutdownFunc(name string, fn ShutdownFunc) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.hooks = append(sm.hooks, shutdownHook{name: name, fn: fn})
}

// WaitForShutdown blocks until SIGINT or SIGTERM, then tears everything
// down. Hook errors are logged and folded into the returned error.
func (sm *ShutdownManager) WaitForShutdown() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	sm.logger.WithField("signal", sig.String()).Info("starting graceful shutdown")

	ctx, cancel := context.WithTimeout(context.Background(), sm.timeout)
	defer cancel()

	if sm.server != nil {
		if err := sm.server.Shutdown(ctx); err != nil {
			sm.logger.WithError(err).Error("http server shutdown failed")
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		sm.logger.Info("http server drained")
	}

	sm.mu.Lock()
	hooks := sm.hooks
	sm.mu.Unlock()

	var wg sync.WaitGroup
	errChan := make(chan error, len(hooks))

	for _, h := range hooks {
		wg.Add(1)
		go func(h shutdownHook) {
			defer wg.Done()
			if err := h.fn(ctx); err != nil {
				sm.logger.WithError(err).WithField("hook", h.name).Error("shutdown hook failed")
				errChan <- fmt.Errorf("%s: %w", h.name, err)
			}
		}(h)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		sm.logger.Warn("shutdown deadline reached before hooks finished")
		return fmt.Errorf("shutdown timeout reached")
	}

	close(errChan)
	var failed int
	for range errChan {
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("shutdown completed with %d failed hooks", failed)
	}

	sm.logger.Info("graceful shutdown complete")
	return nil
}
