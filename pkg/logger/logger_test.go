package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newBufferLogger(t *testing.T, cfg *Config) (*BaseLogger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Format = JSONFormat
	l, err := New(cfg, WithWriter(buf))
	require.NoError(t, err)
	return l, buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &m))
	return m
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{name: "nil config uses default", config: nil},
		{name: "json console", config: &Config{Level: DebugLevel, Format: JSONFormat}},
		{name: "file without path", config: &Config{EnableFile: true}, wantErr: ErrInvalidOutputPath},
		{name: "unknown level", config: &Config{Level: "verbose"}, wantErr: ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.config)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestKeyValueFields(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	l.Info("gacha draw", "player_id", "p1", "count", 10, "error", errors.New("boom"))

	m := lastLine(t, buf)
	assert.Equal(t, "gacha draw", m["msg"])
	assert.Equal(t, "p1", m["player_id"])
	assert.EqualValues(t, 10, m["count"])
	assert.Equal(t, "boom", m["error"])
}

func TestZapFieldsAndOddArgs(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	l.Warn("mixed", zap.String("a", "b"), "dangling")

	m := lastLine(t, buf)
	assert.Equal(t, "b", m["a"])
	assert.Equal(t, "dangling", m["!BADKEY"])
}

func TestNamedAndWithFields(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	child := l.Named("service").Named("gacha").WithFields("node", "n1")
	child.Info("hello")

	m := lastLine(t, buf)
	assert.Equal(t, "service.gacha", m["logger"])
	assert.Equal(t, "n1", m["node"])
}

func TestContextFields(t *testing.T) {
	l, buf := newBufferLogger(t, nil)

	ctx := WithPlayerID(WithRequestID(context.Background(), "req-1"), "player-9")
	l.InfoContext(ctx, "content started", "genre", "Gaming")

	m := lastLine(t, buf)
	assert.Equal(t, "req-1", m["request_id"])
	assert.Equal(t, "player-9", m["player_id"])
	assert.Equal(t, "Gaming", m["genre"])
}

func TestLevelFiltering(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: WarnLevel})

	l.Info("dropped")
	assert.Empty(t, buf.String())

	l.Error("kept")
	assert.Equal(t, "kept", lastLine(t, buf)["msg"])
}

func TestRedactKeys(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{RedactKeys: []string{"Authorization", "*_token"}})

	l.Info("request", "authorization", "Bearer secret", "refresh_token", "r1", "path", "/api")

	m := lastLine(t, buf)
	assert.Equal(t, redacted, m["authorization"])
	assert.Equal(t, redacted, m["refresh_token"])
	assert.Equal(t, "/api", m["path"])
}

func TestSetLevel(t *testing.T) {
	l, buf := newBufferLogger(t, &Config{Level: InfoLevel})
	child := l.Named("service.gacha")

	child.Debug("hidden")
	assert.Empty(t, buf.String())

	require.NoError(t, l.SetLevel(DebugLevel))
	assert.Equal(t, DebugLevel, l.Level())
	child.Debug("shown")
	assert.Equal(t, "shown", lastLine(t, buf)["msg"])

	assert.ErrorIs(t, l.SetLevel("verbose"), ErrInvalidLevel)
	assert.Equal(t, DebugLevel, l.Level())
}

func TestNoop(t *testing.T) {
	var l Logger = NewNoop()
	assert.Same(t, l, l.Named("x"))
	assert.NoError(t, l.Sync())
}
