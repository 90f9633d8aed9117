package engine

import (
	"sort"
	"time"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

const (
	// DefaultTopN 默认返回条数
	DefaultTopN = 100
	// MaxTopN topN 上限
	MaxTopN = 1000
)

// BuildSnapshot 按指标降序、玩家 id 升序排序并编号
func BuildSnapshot(metric model.RankingMetric, rows []*model.RankingRow, now time.Time) *model.RankingSnapshot {
	sorted := append([]*model.RankingRow(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		vi, vj := sorted[i].Value(metric), sorted[j].Value(metric)
		if vi != vj {
			return vi > vj
		}
		return sorted[i].PlayerID < sorted[j].PlayerID
	})

	entries := make([]*model.RankingEntry, len(sorted))
	for i, r := range sorted {
		entries[i] = &model.RankingEntry{
			Rank:         i + 1,
			PlayerID:     r.PlayerID,
			Name:         r.Name,
			ChannelName:  r.ChannelName,
			Subscribers:  r.Subscribers,
			ChannelPower: r.ChannelPower,
			Value:        r.Value(metric),
		}
	}
	return &model.RankingSnapshot{Metric: metric, Entries: entries, BuiltAt: now}
}

// Rank 截取前 topN 并定位请求者；快照本身不被修改
func Rank(snap *model.RankingSnapshot, requester string, topN, maxTopN int) (*model.RankingResult, error) {
	if maxTopN <= 0 {
		maxTopN = MaxTopN
	}
	if topN < 1 || topN > maxTopN {
		return nil, gameerr.Validation("topN must be between 1 and %d, got %d", maxTopN, topN)
	}

	n := min(topN, len(snap.Entries))
	res := &model.RankingResult{
		Metric:       snap.Metric,
		Entries:      make([]*model.RankingEntry, n),
		TotalPlayers: len(snap.Entries),
		BuiltAt:      snap.BuiltAt,
	}
	for i := 0; i < n; i++ {
		e := *snap.Entries[i]
		e.IsMe = e.PlayerID == requester
		res.Entries[i] = &e
	}
	for _, e := range snap.Entries {
		if e.PlayerID == requester {
			me := *e
			me.IsMe = true
			res.Me = &me
			break
		}
	}
	return res, nil
}
