package callback

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/shade-bridge/internal/bridge"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/config"
	"github.com/nerrad567/shade-bridge/internal/infrastructure/logging"
)

// maxBodyBytes caps the accepted request body. Hub callback payloads are
// a few hundred bytes in practice.
const maxBodyBytes = 1 << 20

// gracefulShutdownTimeout is the maximum time to wait for in-flight
// requests to complete during shutdown.
const gracefulShutdownTimeout = 5 * time.Second

// Sink receives decoded motion batches from the listener.
//
// It is implemented by the bridge server, which serializes batches onto
// its event loop.
type Sink interface {
	EnqueueMotion(serial string, events []bridge.MotionEvent) error
}

// Listener is the HTTP endpoint the hub pushes motion events to.
//
// It owns a plain net/http server with a single route and forwards every
// decoded batch to the Sink. The listener is created with New() and
// started with Start().
type Listener struct {
	cfg    config.CallbackConfig
	logger *logging.Logger
	sink   Sink
	server *http.Server
	ln     net.Listener
}

// New creates a listener bound to the configured address.
//
// Parameters:
//   - cfg: Listen address and port
//   - sink: Destination for decoded motion batches
//   - logger: Structured logger
//
// Returns:
//   - *Listener: Configured listener ready to start
//   - error: If required dependencies are missing
func New(cfg config.CallbackConfig, sink Sink, logger *logging.Logger) (*Listener, error) {
	if sink == nil {
		return nil, fmt.Errorf("sink is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &Listener{
		cfg:    cfg,
		logger: logger,
		sink:   sink,
	}, nil
}

// Start binds the listen port and begins serving in a background goroutine.
//
// Returns:
//   - error: If the port cannot be bound
func (l *Listener) Start() error {
	addr := fmt.Sprintf("%s:%d", l.cfg.ListenAddress, l.cfg.Port)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("binding callback listener: %w", err)
	}
	l.ln = ln

	l.server = &http.Server{
		Handler:           l.routes(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	go func() {
		if err := l.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.logger.Error("callback listener error", "error", err)
		}
	}()

	l.logger.Info("callback listener started", "address", ln.Addr().String())
	return nil
}

// Addr returns the bound listen address, valid after Start().
func (l *Listener) Addr() string {
	if l.ln == nil {
		return ""
	}
	return l.ln.Addr().String()
}

// Close gracefully shuts down the listener, waiting briefly for
// in-flight requests to complete.
//
// Returns:
//   - error: If shutdown encounters an error
func (l *Listener) Close() error {
	if l.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	if err := l.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down callback listener: %w", err)
	}
	return nil
}

func (l *Listener) routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/hub/{serial}/events", l.handleEvents)
	return r
}

// handleEvents decodes a hub callback and enqueues its motion batch.
//
// The hub sends the JSON body base64-encoded. A body carrying only a
// configNum is a configuration-mismatch notice: the hub noticed the
// registered callback is stale, and the next full pass re-registers it,
// so the notice is logged and dropped here.
func (l *Listener) handleEvents(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		l.logger.Warn("callback body read failed", "serial", serial, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(string(bytes.TrimSpace(raw)))
	if err != nil {
		l.logger.Warn("callback body is not valid base64", "serial", serial, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var body bridge.CallbackBody
	if err := json.Unmarshal(decoded, &body); err != nil {
		l.logger.Warn("callback body is not valid JSON", "serial", serial, "error", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if body.ConfigNum != nil {
		l.logger.Info("hub reported callback config mismatch",
			"serial", serial,
			"config_num", *body.ConfigNum,
		)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if len(body.Events) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := l.sink.EnqueueMotion(serial, body.Events); err != nil {
		l.logger.Warn("dropping motion batch", "serial", serial, "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	l.logger.Debug("motion batch enqueued", "serial", serial, "events", len(body.Events))
	w.WriteHeader(http.StatusNoContent)
}
