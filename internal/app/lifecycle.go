package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// ShutdownHook runs during Stop, after the HTTP server has stopped
// accepting new connections. Hooks run in registration order; the first
// error is returned but every hook still runs.
type ShutdownHook func(ctx context.Context) error

// Lifecycle owns an HTTP server's start/stop sequence: listen in the
// background, wait for an OS interrupt or a server error, then shut down
// within a bounded timeout.
type Lifecycle struct {
	server          *http.Server
	logger          *slog.Logger
	shutdownTimeout time.Duration
	hooks           []ShutdownHook
}

// New creates a Lifecycle for server. shutdownTimeout bounds how long Stop
// waits for in-flight requests and shutdown hooks to finish.
func New(server *http.Server, logger *slog.Logger, shutdownTimeout time.Duration) *Lifecycle {
	return &Lifecycle{
		server:          server,
		logger:          logger,
		shutdownTimeout: shutdownTimeout,
	}
}

// OnShutdown registers a hook to run during Stop, such as flushing
// OpenTelemetry providers.
func (l *Lifecycle) OnShutdown(hook ShutdownHook) {
	l.hooks = append(l.hooks, hook)
}

// Start begins listening in the background and returns immediately. A
// server error other than http.ErrServerClosed cancels ctx via stop so
// Run's wait loop notices it.
func (l *Lifecycle) Start(ctx context.Context, stop context.CancelFunc) {
	go func() {
		l.logger.Info("server listening", slog.String("addr", l.server.Addr))
		if err := l.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.logger.Error("server error", slog.String("error", err.Error()))
			stop()
		}
	}()
}

// Stop shuts down the server and runs every registered hook, returning
// the first error encountered.
func (l *Lifecycle) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, l.shutdownTimeout)
	defer cancel()

	var firstErr error
	if err := l.server.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("server shutdown: %w", err)
	}
	for _, hook := range l.hooks {
		if err := hook(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown hook: %w", err)
		}
	}
	return firstErr
}

// Run starts the server, blocks until SIGINT, SIGTERM, or a server
// error, then shuts down gracefully.
func (l *Lifecycle) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	l.Start(ctx, stop)

	<-ctx.Done()
	l.logger.Info("shutting down")
	if err := l.Stop(context.Background()); err != nil {
		return err
	}
	l.logger.Info("shutdown complete")
	return nil
}
