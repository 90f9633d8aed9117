package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

func rankingRows() []*model.RankingRow {
	return []*model.RankingRow{
		{PlayerID: "p3", Subscribers: 50, ChannelPower: 900},
		{PlayerID: "p1", Subscribers: 100, ChannelPower: 100},
		{PlayerID: "p2", Subscribers: 100, ChannelPower: 300},
		{PlayerID: "p4", Subscribers: 10, ChannelPower: 10},
	}
}

func TestBuildSnapshot(t *testing.T) {
	snap := BuildSnapshot(model.MetricSubscribers, rankingRows(), testNow)
	ids := []string{}
	for i, e := range snap.Entries {
		assert.Equal(t, i+1, e.Rank)
		ids = append(ids, e.PlayerID)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ids)

	snap = BuildSnapshot(model.MetricChannelPower, rankingRows(), testNow)
	assert.Equal(t, "p3", snap.Entries[0].PlayerID)
	assert.Equal(t, int64(900), snap.Entries[0].Value)
}

func TestRank(t *testing.T) {
	snap := BuildSnapshot(model.MetricSubscribers, rankingRows(), testNow)

	res, err := Rank(snap, "p4", 2, 0)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)
	assert.Equal(t, 4, res.TotalPlayers)
	require.NotNil(t, res.Me)
	assert.Equal(t, 4, res.Me.Rank)
	assert.True(t, res.Me.IsMe)
	assert.False(t, res.Entries[0].IsMe)
	assert.False(t, snap.Entries[3].IsMe)

	res, err = Rank(snap, "p1", 100, 0)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 4)
	assert.True(t, res.Entries[0].IsMe)

	res, err = Rank(snap, "stranger", 10, 0)
	require.NoError(t, err)
	assert.Nil(t, res.Me)

	for _, n := range []int{0, -5, 1001} {
		_, err = Rank(snap, "p1", n, 0)
		assert.True(t, gameerr.Is(err, gameerr.KindValidation), "topN %d", n)
	}
	_, err = Rank(snap, "p1", 20, 10)
	assert.True(t, gameerr.Is(err, gameerr.KindValidation))
}

func TestRankStrictlySorted(t *testing.T) {
	rows := make([]*model.RankingRow, 0, 300)
	for i := 0; i < 300; i++ {
		rows = append(rows, &model.RankingRow{PlayerID: fmt.Sprintf("p%03d", i), Subscribers: int64((i * 7919) % 50)})
	}
	snap := BuildSnapshot(model.MetricSubscribers, rows, testNow)
	res, err := Rank(snap, "p150", 120, 0)
	require.NoError(t, err)
	assert.Len(t, res.Entries, 120)

	for i := 1; i < len(snap.Entries); i++ {
		a, b := snap.Entries[i-1], snap.Entries[i]
		assert.True(t, a.Value > b.Value || (a.Value == b.Value && a.PlayerID < b.PlayerID))
	}
	assert.Equal(t, "p150", snap.Entries[res.Me.Rank-1].PlayerID)
}
