package serve

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"fjacquet/budget-analytics/internal/config"
	"fjacquet/budget-analytics/internal/container"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContainer(t *testing.T, address string) *container.Container {
	t.Helper()
	cfg := &config.Config{}
	cfg.Log.Level = "error"
	cfg.Log.Format = "text"
	cfg.Rules.Backend = config.BackendYAML
	cfg.Rules.File = filepath.Join(t.TempDir(), "rules.yaml")
	cfg.Server.Address = address
	cfg.Server.ReadTimeoutSeconds = 5
	cfg.Server.WriteTimeoutSeconds = 5

	c, err := container.NewContainer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewHTTPServer(t *testing.T) {
	srv := NewHTTPServer(newContainer(t, ":9999"))

	assert.Equal(t, ":9999", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRun_GracefulShutdown(t *testing.T) {
	addr := freeAddress(t)
	c := newContainer(t, addr)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Run(ctx, c) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestRun_SchedulerWithoutPostgres(t *testing.T) {
	c := newContainer(t, freeAddress(t))
	c.GetConfig().Scheduler.Enabled = true

	err := Run(context.Background(), c)
	assert.Error(t, err)
}

func TestRun_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer func() { _ = l.Close() }()

	err = Run(context.Background(), newContainer(t, l.Addr().String()))
	assert.Error(t, err)
}
