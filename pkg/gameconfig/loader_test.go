package gameconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/pkg/logger"
)

type gachaTable struct {
	CostPerDraw int64 `json:"costPerDraw"`
}

func TestLoadPrefersFileOverEmbedded(t *testing.T) {
	dir := t.TempDir()
	embedded := fstest.MapFS{
		"gacha.json":   {Data: []byte(`{"costPerDraw":100}`)},
		"content.json": {Data: []byte(`{"costPerDraw":1}`)},
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "gacha.json"), []byte(`{"costPerDraw":150}`), 0o644))

	src := NewSource(dir, embedded, logger.NewNoop())

	var g gachaTable
	origin, err := src.Load("gacha", &g)
	require.NoError(t, err)
	assert.Equal(t, OriginFile, origin)
	assert.Equal(t, int64(150), g.CostPerDraw)

	origin, err = src.Load("content", &g)
	require.NoError(t, err)
	assert.Equal(t, OriginEmbedded, origin)

	_, err = src.Load("missing", &g)
	assert.ErrorIs(t, err, ErrTableNotFound)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	src := NewSource("", fstest.MapFS{"gacha.json": {Data: []byte(`{"costPerDraw":1,"typo":2}`)}}, logger.NewNoop())
	var g gachaTable
	_, err := src.Load("gacha", &g)
	assert.Error(t, err)
}

func TestWatchReportsChangedTables(t *testing.T) {
	dir := t.TempDir()
	src := NewSource(dir, nil, logger.NewNoop())
	src.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan []string, 4)
	go func() { _ = src.Watch(ctx, func(tables []string) { changed <- tables }) }()
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "gacha.json"), []byte(`{}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte(`x`), 0o644))

	select {
	case tables := <-changed:
		assert.Equal(t, []string{"gacha"}, tables)
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
}
