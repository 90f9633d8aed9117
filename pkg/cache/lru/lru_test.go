package lru

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) Now() time.Time          { return f.t }
func (f *fakeClock) Advance(d time.Duration) { f.t = f.t.Add(d) }

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	var evicted []string
	c := New[string, int](&Config{MaxSize: 2},
		WithOnEvict(func(k string, _ int) { evicted = append(evicted, k) }))
	defer c.Close()

	c.Set("a", 1)
	c.Set("b", 2)
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", 3)

	_, ok = c.Get("b")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, evicted)
	assert.Equal(t, 2, c.Len())
}

func TestTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	c := New[string, int](&Config{MaxSize: 10, DefaultTTL: time.Minute}, WithClock[string, int](clock.Now))
	defer c.Close()

	c.Set("a", 1)
	c.SetWithTTL("forever", 2, 0)
	clock.Advance(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	v, ok := c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	c.Set("b", 3)
	clock.Advance(2 * time.Minute)
	c.removeExpired()
	assert.Equal(t, 1, c.Len())
}

func TestGetOrCreate(t *testing.T) {
	c := New[string, int](&Config{MaxSize: 10, CleanupInterval: time.Hour})
	defer c.Close()

	calls := 0
	create := func() int { calls++; return 42 }
	assert.Equal(t, 42, c.GetOrCreate("k", create))
	assert.Equal(t, 42, c.GetOrCreate("k", create))
	assert.Equal(t, 1, calls)

	c.Delete("k")
	assert.Equal(t, 42, c.GetOrCreate("k", create))
	assert.Equal(t, 2, calls)
	assert.NoError(t, c.Close())
}
