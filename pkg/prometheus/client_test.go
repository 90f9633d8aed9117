package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (&Config{}).Validate(), ErrInvalidConfig)

	cfg := &Config{Namespace: "x", HTTPServer: HTTPServerConfig{Enabled: true}}
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg.HTTPServer.Addr = ":0"
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "/metrics", cfg.HTTPServer.Path)
}

func TestHandlerExposesRegisteredMetrics(t *testing.T) {
	c, err := New(&Config{Namespace: "creatorsim"}, logger.NewNoop())
	require.NoError(t, err)

	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: c.Namespace(),
		Name:      "draws_total",
		Help:      "test",
	})
	c.Registerer().MustRegister(counter)
	counter.Add(3)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "creatorsim_draws_total 3")
}

func TestStartStopStandalone(t *testing.T) {
	c, err := New(&Config{
		Namespace:  "creatorsim",
		HTTPServer: HTTPServerConfig{Enabled: true, Addr: "127.0.0.1:0"},
	}, logger.NewNoop())
	require.NoError(t, err)

	require.NoError(t, c.Start())
	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.Stop(context.Background()))
	assert.ErrorIs(t, c.Start(), ErrClientClosed)
}
