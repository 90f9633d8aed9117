package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

type fakeServer struct {
	started, stopped atomic.Bool
	startErr         error
}

func (s *fakeServer) Start() error {
	s.started.Store(true)
	return s.startErr
}

func (s *fakeServer) Stop(context.Context) error {
	s.stopped.Store(true)
	return nil
}

func TestRunAndShutdownOrder(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithName("test"), WithStopTimeout(time.Second))
	srv := &fakeServer{}

	var order []string
	InitApp(a, AppComponents{
		Servers: []Server{srv},
		Closers: []Closer{
			CloserFunc(func() error { order = append(order, "db"); return nil }),
			CloserFunc(func() error { order = append(order, "redis"); return errors.New("boom") }),
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	require.Eventually(t, srv.started.Load, time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, a.Run(context.Background()), ErrAppAlreadyRunning)
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	case <-time.After(2 * time.Second):
		t.Fatal("app did not stop")
	}
	assert.True(t, srv.stopped.Load())
	assert.Equal(t, []string{"redis", "db"}, order)
	assert.NoError(t, a.Shutdown())
}

func TestRunStartFailure(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	srv := &fakeServer{startErr: errors.New("bind failed")}
	a.AppendServer(srv)

	err := a.Run(context.Background())
	assert.EqualError(t, err, "bind failed")
	assert.True(t, srv.stopped.Load())
}

func TestLoggerFallback(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()))
	assert.NotNil(t, a.Logger("access"))

	a.registry.Register("gacha", logger.NewNoop())
	assert.NotNil(t, a.Logger("gacha"))
	assert.Equal(t, []string{"gacha"}, a.registry.Names())
}

func TestLoggerRegistry(t *testing.T) {
	dir := t.TempDir()
	r, err := NewLoggerRegistry(logger.NewNoop(), map[string]*logger.Config{
		"audit": {
			Level:      logger.InfoLevel,
			Format:     logger.JSONFormat,
			EnableFile: true,
			OutputPath: filepath.Join(dir, "audit.log"),
		},
		"skipped": nil,
	})
	require.NoError(t, err)
	assert.True(t, r.Configured("audit"))
	assert.False(t, r.Configured("skipped"))
	assert.NotNil(t, r.Get("access"))

	r.Get("audit").Info("committed", "op", "gacha.draw")
	r.Sync()
	data, err := os.ReadFile(filepath.Join(dir, "audit.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "gacha.draw")

	_, err = NewLoggerRegistry(nil, map[string]*logger.Config{
		"bad": {Level: "verbose"},
	})
	assert.Error(t, err)
}

func TestInstanceID(t *testing.T) {
	a := NewBaseApp(WithLogger(logger.NewNoop()), WithInstanceID("game-1"))
	assert.Equal(t, "game-1", a.opts.ID)

	b := NewBaseApp(WithLogger(logger.NewNoop()), WithInstanceID(""))
	assert.NotEmpty(t, b.opts.ID)
}

func TestGetInfo(t *testing.T) {
	info := GetInfo()
	assert.Equal(t, AppName, info.AppName)
	assert.NotEmpty(t, info.GitCommit)
	assert.GreaterOrEqual(t, info.Uptime, int64(0))
	assert.Contains(t, info.String(), info.Version)
}
