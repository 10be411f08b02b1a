package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"casevault/internal/platform/config"
)

func TestNew(t *testing.T) {
	handler := http.NotFoundHandler()
	srv := New(config.Server{Addr: ":9090"}, handler, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.Equal(t, ":9090", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.NotNil(t, srv.ErrorLog)
	assert.Greater(t, srv.WriteTimeout, 30*time.Second)

	assert.Nil(t, New(config.Server{}, handler, nil).ErrorLog)
}

func TestDrainTimeout(t *testing.T) {
	assert.Equal(t, 10*time.Second, DrainTimeout(config.Server{}))
	assert.Equal(t, 3*time.Second, DrainTimeout(config.Server{ShutdownTimeout: 3 * time.Second}))
}
