package event

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.Publish(context.Background(),
		Event{ID: "1", Type: TypeGachaDraw, PlayerID: "p1", OccurredAt: now},
		Event{ID: "2", Type: TypeContentUploaded, PlayerID: "p1", OccurredAt: now},
	))
	require.NoError(t, r.Publish(context.Background(), Event{ID: "3", Type: TypeGachaDraw, PlayerID: "p2"}))

	assert.Len(t, r.Events(), 3)
	draws := r.OfType(TypeGachaDraw)
	require.Len(t, draws, 2)
	assert.Equal(t, "p2", draws[1].PlayerID)
	assert.Empty(t, r.OfType(TypeAdminGrant))
}

func TestNoop(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}
