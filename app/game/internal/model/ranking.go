package model

import "time"

// RankingMetric 排行指标
type RankingMetric string

const (
	MetricSubscribers  RankingMetric = "subscribers"
	MetricChannelPower RankingMetric = "channel_power"
)

// ParseRankingMetric 解析排行指标，weekly 为 subscribers 的别名
func ParseRankingMetric(s string) (RankingMetric, bool) {
	switch s {
	case "subscribers", "weekly":
		return MetricSubscribers, true
	case "channel_power", "channelPower", "power":
		return MetricChannelPower, true
	}
	return "", false
}

// RankingRow 排行投影，仅包含排序所需字段
type RankingRow struct {
	PlayerID     string `db:"id"`
	Name         string `db:"name"`
	ChannelName  string `db:"channel_name"`
	Subscribers  int64  `db:"subscribers"`
	ChannelPower int64  `db:"channel_power"`
}

// Value 按指标取值
func (r *RankingRow) Value(m RankingMetric) int64 {
	if m == MetricChannelPower {
		return r.ChannelPower
	}
	return r.Subscribers
}

// RankingEntry 排行条目
type RankingEntry struct {
	Rank         int    `json:"rank"`
	PlayerID     string `json:"playerId"`
	Name         string `json:"playerName"`
	ChannelName  string `json:"channelName"`
	Subscribers  int64  `json:"subscribers"`
	ChannelPower int64  `json:"channelPower"`
	Value        int64  `json:"value"`
	IsMe         bool   `json:"isMe"`
}

// RankingSnapshot 某指标的全量有序排行
type RankingSnapshot struct {
	Metric  RankingMetric   `json:"metric"`
	Entries []*RankingEntry `json:"entries"`
	BuiltAt time.Time       `json:"builtAt"`
}

// RankingResult 返回给请求者的排行
type RankingResult struct {
	Metric       RankingMetric   `json:"metric"`
	Entries      []*RankingEntry `json:"entries"`
	Me           *RankingEntry   `json:"myRanking,omitempty"`
	TotalPlayers int             `json:"totalPlayers"`
	BuiltAt      time.Time       `json:"builtAt"`
}
