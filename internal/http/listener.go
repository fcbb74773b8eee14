package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Listener timeouts. Proof verification runs inside a request, so the write timeout
// must stay above PROOF_VERIFY_TIMEOUT_SECONDS.
const (
	readTimeout  = 15 * time.Second
	writeTimeout = 60 * time.Second
	idleTimeout  = 60 * time.Second
)

// listener is the http.Server lifecycle shared by the API and metrics servers.
type listener struct {
	name   string
	server *http.Server
	logger *slog.Logger
}

func newListener(name, host string, port int, logger *slog.Logger) listener {
	return listener{
		name: name,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			IdleTimeout:  idleTimeout,
		},
		logger: logger,
	}
}

// listen blocks serving handler until Shutdown. A clean shutdown returns nil.
func (l *listener) listen(handler http.Handler) error {
	l.server.Handler = handler

	l.logger.Info("starting "+l.name+" server", slog.String("addr", l.server.Addr))

	if err := l.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start %s server: %w", l.name, err)
	}
	return nil
}

// Shutdown gracefully drains in-flight requests until ctx expires.
func (l *listener) Shutdown(ctx context.Context) error {
	l.logger.Info("shutting down " + l.name + " server")
	return l.server.Shutdown(ctx)
}
