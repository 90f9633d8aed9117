package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockConfig struct {
	Distributed bool          `mapstructure:"distributed"`
	TTL         time.Duration `mapstructure:"ttl"`
}

type gameConfig struct {
	RNGSeed uint64            `mapstructure:"rng_seed"`
	Lock    lockConfig        `mapstructure:"lock"`
	Genres  []string          `mapstructure:"genres"`
	Labels  map[string]string `mapstructure:"labels"`
	Extra   *lockConfig       `mapstructure:"extra"`
}

type rootConfig struct {
	Game    gameConfig `mapstructure:"game"`
	Storage struct {
		Driver string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	} `mapstructure:"storage"`
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMergeConfig(t *testing.T) {
	t.Run("nil handling", func(t *testing.T) {
		_, err := MergeConfig[gameConfig](nil, nil)
		assert.True(t, errors.Is(err, ErrMergeFailed))

		src := &gameConfig{RNGSeed: 7}
		got, err := MergeConfig(nil, src)
		require.NoError(t, err)
		assert.Same(t, src, got)
	})

	t.Run("zero values keep defaults", func(t *testing.T) {
		dst := &gameConfig{
			RNGSeed: 1,
			Lock:    lockConfig{Distributed: true, TTL: 5 * time.Second},
			Genres:  []string{"vlog"},
			Labels:  map[string]string{"a": "1"},
		}
		src := &gameConfig{
			Lock:   lockConfig{TTL: time.Second},
			Labels: map[string]string{"b": "2"},
			Extra:  &lockConfig{TTL: time.Minute},
		}

		got, err := MergeConfig(dst, src)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), got.RNGSeed)
		assert.True(t, got.Lock.Distributed)
		assert.Equal(t, time.Second, got.Lock.TTL)
		assert.Equal(t, []string{"vlog"}, got.Genres)
		assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got.Labels)
		require.NotNil(t, got.Extra)
		assert.Equal(t, time.Minute, got.Extra.TTL)
	})
}

func TestManagerLoadAndEnv(t *testing.T) {
	path := writeFile(t, "config.yaml", `
game:
  rng_seed: 42
  lock:
    distributed: false
    ttl: 3s
  genres: vlog,gaming
storage:
  driver: memory
`)
	t.Setenv("CSTEST_GAME_RNG_SEED", "99")

	m := NewManager(WithEnvPrefix("CSTEST"), WithDefaults(map[string]any{"game.lock.distributed": true}))
	require.NoError(t, m.LoadFile(path))

	var cfg rootConfig
	require.NoError(t, m.Unmarshal(&cfg))
	assert.Equal(t, uint64(99), cfg.Game.RNGSeed)
	assert.False(t, cfg.Game.Lock.Distributed)
	assert.Equal(t, 3*time.Second, cfg.Game.Lock.TTL)
	assert.Equal(t, []string{"vlog", "gaming"}, cfg.Game.Genres)
	assert.Equal(t, "memory", m.GetString("storage.driver"))
	assert.True(t, m.IsSet("game.lock.ttl"))

	var lock lockConfig
	require.NoError(t, m.UnmarshalKey("game.lock", &lock))
	assert.Equal(t, 3*time.Second, lock.TTL)
}

func TestManagerMissingFile(t *testing.T) {
	err := NewManager().LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}

func TestValidator(t *testing.T) {
	v := NewValidator()
	assert.ErrorIs(t, v.Validate(nil), ErrNilConfig)

	var cfg rootConfig
	cfg.Storage.Driver = "mysql"
	err := v.Validate(&cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Contains(t, err.Error(), "must be one of")

	cfg.Storage.Driver = "postgres"
	assert.NoError(t, v.Validate(&cfg))
}

func TestManagerOnChange(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\nweb:\n  addr: \":8080\"\n")
	m := NewManager()
	require.NoError(t, m.LoadFile(path))

	changed := make(chan string, 4)
	require.NoError(t, m.OnChange("log.level", func() { changed <- m.GetString("log.level") }))

	// 其他 key 变化不触发
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: info\nweb:\n  addr: \":9090\"\n"), 0o644))
	select {
	case got := <-changed:
		t.Fatalf("unexpected callback with %q", got)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\nweb:\n  addr: \":9090\"\n"), 0o644))
	select {
	case got := <-changed:
		assert.Equal(t, "debug", got)
	case <-time.After(3 * time.Second):
		t.Fatal("no change callback")
	}
}

func TestManagerOnChangeRequiresFile(t *testing.T) {
	err := NewManager().OnChange("log.level", func() {})
	assert.True(t, errors.Is(err, ErrConfigFileNotFound))
}

func TestNotifySkipsTruncatedReload(t *testing.T) {
	path := writeFile(t, "config.yaml", "log:\n  level: info\n")
	m := NewManager().(*manager)
	require.NoError(t, m.LoadFile(path))

	var got []string
	m.subs = append(m.subs, &subscription{
		key:  "log.level",
		last: m.v.Get("log.level"),
		fn:   func() { got = append(got, m.v.GetString("log.level")) },
	})

	// 截断后的空文档
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, m.v.ReadInConfig())
	m.notify()
	assert.Empty(t, got)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644))
	require.NoError(t, m.v.ReadInConfig())
	m.notify()
	m.notify()
	assert.Equal(t, []string{"debug"}, got)
}
