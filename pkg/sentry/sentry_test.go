package sentry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (r *recorder) beforeSend(e *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) all() []*sentry.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*sentry.Event(nil), r.events...)
}

func newTestClient(t *testing.T) (*Client, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := New(&Config{Tags: map[string]string{"service": "game"}}, WithBeforeSend(rec.beforeSend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, rec
}

func TestInvalidSampleRate(t *testing.T) {
	_, err := New(&Config{SampleRate: 2})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCaptureError(t *testing.T) {
	c, rec := newTestClient(t)
	c.CaptureError(context.Background(), errors.New("db down"))

	events := rec.all()
	require.Len(t, events, 1)
	assert.Equal(t, "game", events[0].Tags["service"])
	require.NotEmpty(t, events[0].Exception)
	assert.Equal(t, "db down", events[0].Exception[0].Value)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	assert.Nil(t, c.CaptureError(context.Background(), errors.New("x")))
	assert.NoError(t, c.Close())
}

func TestCloseTwice(t *testing.T) {
	c, err := New(&Config{})
	require.NoError(t, err)
	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)
	assert.Nil(t, c.CaptureError(context.Background(), errors.New("late")))
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, rec := newTestClient(t)

	engine := gin.New()
	engine.Use(gin.CustomRecovery(func(ctx *gin.Context, _ any) {
		ctx.AbortWithStatus(http.StatusInternalServerError)
	}))
	engine.Use(Middleware(c))
	engine.GET("/fail", func(ctx *gin.Context) {
		SetPlayer(ctx.Request.Context(), "p1")
		CaptureError(ctx.Request.Context(), errors.New("save failed"))
		ctx.Status(http.StatusInternalServerError)
	})
	engine.GET("/panic", func(*gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	events := rec.all()
	require.Len(t, events, 2)
	assert.Equal(t, "p1", events[0].User.ID)
	assert.Equal(t, "boom", events[1].Message)
}
