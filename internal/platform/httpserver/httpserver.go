// Package httpserver builds the casevault *http.Server from config.
package httpserver

import (
	"log/slog"
	"net/http"
	"time"

	"casevault/internal/platform/config"
)

const defaultDrain = 10 * time.Second

// New returns a server with read limits suited to JSON and multipart uploads.
// The write timeout leaves room for the 30s ledger and blob calls behind
// evidence submission. Server errors go to logger at warn level.
func New(cfg config.Server, handler http.Handler, logger *slog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
	if logger != nil {
		srv.ErrorLog = slog.NewLogLogger(logger.With("component", "http-server").Handler(), slog.LevelWarn)
	}
	return srv
}

// DrainTimeout bounds graceful shutdown.
func DrainTimeout(cfg config.Server) time.Duration {
	if cfg.ShutdownTimeout > 0 {
		return cfg.ShutdownTimeout
	}
	return defaultDrain
}
