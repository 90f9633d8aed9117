package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient 需要 CREATORSIM_TEST_PG_DSN 指向可写的测试库
func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := os.Getenv("CREATORSIM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CREATORSIM_TEST_PG_DSN not set")
	}
	c, err := New(&Config{DSN: dsn, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestToSnakeCase(t *testing.T) {
	cases := map[string]string{
		"PlayerID":     "player_id",
		"TotalViews":   "total_views",
		"ExpChips":     "exp_chips",
		"Gold":         "gold",
		"HTTPStatus":   "http_status",
		"CreatedAt":    "created_at",
		"DefinitionID": "definition_id",
	}
	for in, want := range cases {
		assert.Equal(t, want, toSnakeCase(in), in)
	}
}

func TestValidateConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, validateConfig(cfg))

	cfg.Primary.Port = 0
	assert.True(t, errors.Is(validateConfig(cfg), ErrInvalidConfig))

	cfg.DSN = "postgres://localhost/creatorsim"
	assert.NoError(t, validateConfig(cfg))

	cfg.Pool.MinConns = 100
	assert.True(t, errors.Is(validateConfig(cfg), ErrInvalidConfig))
}

func TestBuildConnString(t *testing.T) {
	cfg := DefaultConfig()
	got := buildConnString(cfg, &DBConfig{Host: "db", Port: 6432, User: "u", DBName: "game"})
	assert.Contains(t, got, "host=db port=6432")
	assert.Contains(t, got, "sslmode=disable")
	assert.Contains(t, got, "connect_timeout=10")

	cfg.DSN = "postgres://x"
	assert.Equal(t, "postgres://x", primaryConnString(cfg))
}

func TestNewNilConfig(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilConfig)
}

type kvRow struct {
	Key   string `db:"k"`
	Value int64
}

func TestTxIntegration(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	_, err := c.Primary().Exec(ctx, `DROP TABLE IF EXISTS kv_test; CREATE TABLE kv_test (k TEXT PRIMARY KEY, value BIGINT NOT NULL)`)
	require.NoError(t, err)
	t.Cleanup(func() { _, _ = c.Primary().Exec(context.Background(), `DROP TABLE IF EXISTS kv_test`) })

	err = c.WithTx(ctx, func(q Querier) error {
		_, err := Exec(ctx, q, QueryBuilder.Insert("kv_test").Columns("k", "value").Values("a", 1))
		return err
	})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = c.WithTxOptions(ctx, TxOptions{IsoLevel: TxIsolationLevelSerializable}, func(q Querier) error {
		if _, err := Exec(ctx, q, QueryBuilder.Update("kv_test").Set("value", 99).Where("k = ?", "a")); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	row, err := Get[kvRow](ctx, c.Primary(), QueryBuilder.Select("k", "value").From("kv_test").Where("k = ?", "a"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), row.Value)

	_, err = Get[kvRow](ctx, c.Primary(), QueryBuilder.Select("k", "value").From("kv_test").Where("k = ?", "missing"))
	assert.ErrorIs(t, err, ErrNoRows)

	rows, err := Select[kvRow](ctx, c.Replica(), QueryBuilder.Select("*").From("kv_test"))
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
