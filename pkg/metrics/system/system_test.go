package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorSnapshot(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Start(time.Hour))
	require.NoError(t, c.Start(time.Hour))

	s := c.GetStats()
	assert.Positive(t, s.Goroutines)
	assert.False(t, s.UpdatedAt.IsZero())
	assert.Positive(t, s.MemoryBytes)

	c.Stop()
	c.Stop()
}
