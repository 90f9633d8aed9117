package rng

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededReproducible(t *testing.T) {
	a, b := NewSeeded(42), NewSeeded(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
		assert.Equal(t, a.IntN(7), b.IntN(7))
	}
}

func TestFactoryReproducible(t *testing.T) {
	f1, f2 := NewFactory(7), NewFactory(7)
	for i := 0; i < 10; i++ {
		assert.Equal(t, f1.New().Float64(), f2.New().Float64())
	}

	e := NewFactory(0)
	v := e.New().Float64()
	assert.GreaterOrEqual(t, v, 0.0)
	assert.Less(t, v, 1.0)
}

func TestIntRange(t *testing.T) {
	src := NewSeeded(1)
	seen := map[int64]bool{}
	for i := 0; i < 2000; i++ {
		v := IntRange(src, 10, 30)
		assert.GreaterOrEqual(t, v, int64(10))
		assert.LessOrEqual(t, v, int64(30))
		seen[v] = true
	}
	assert.Len(t, seen, 21)
	assert.Equal(t, int64(5), IntRange(src, 5, 5))
}

func TestFixed(t *testing.T) {
	f := &Fixed{Values: []float64{0.0, 0.5, 0.999}}
	assert.Equal(t, 0, f.IntN(4))
	assert.Equal(t, 2, f.IntN(4))
	assert.Equal(t, 3, f.IntN(4))
	assert.Equal(t, 0.0, f.Float64())
}
