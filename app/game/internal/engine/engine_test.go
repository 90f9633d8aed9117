package engine

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func loadTable(t *testing.T) *masterdata.Table {
	t.Helper()
	tb, err := masterdata.LoadDefault()
	require.NoError(t, err)
	return tb
}

func newEnv(t *testing.T, src rng.Source) *Env {
	t.Helper()
	seq := 0
	return &Env{
		Table: loadTable(t),
		Rand:  src,
		Now:   testNow,
		NewID: func() string {
			seq++
			return fmt.Sprintf("id-%03d", seq)
		},
	}
}

func newPlayer() *model.Player {
	return &model.Player{ID: "p1", Name: "alice", Gold: 1000, Gems: 100, Tickets: 10}
}
