package model

import "time"

// Resource 可结算的货币类型
type Resource string

const (
	ResourceGold     Resource = "gold"
	ResourceGems     Resource = "gems"
	ResourceTickets  Resource = "tickets"
	ResourceExpChips Resource = "exp_chips"
)

// AllResources 全部货币类型
var AllResources = []Resource{ResourceGold, ResourceGems, ResourceTickets, ResourceExpChips}

// Valid 是否为已知货币
func (r Resource) Valid() bool {
	switch r {
	case ResourceGold, ResourceGems, ResourceTickets, ResourceExpChips:
		return true
	}
	return false
}

// Player 玩家，对应 players 表
type Player struct {
	ID          string `db:"id" json:"playerId"`
	Name        string `db:"name" json:"name"`
	ChannelName string `db:"channel_name" json:"channelName"`

	// 货币，任何可观察时刻均 >= 0
	Gold     int64 `db:"gold" json:"gold"`
	Gems     int64 `db:"gems" json:"gems"`
	Tickets  int64 `db:"tickets" json:"tickets"`
	ExpChips int64 `db:"exp_chips" json:"expChips"`

	// 频道成长
	Subscribers  int64 `db:"subscribers" json:"subscribers"`
	TotalViews   int64 `db:"total_views" json:"totalViews"`
	ChannelPower int64 `db:"channel_power" json:"channelPower"`
	StudioLevel  int   `db:"studio_level" json:"studioLevel"`

	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Balance 读取货币余额
func (p *Player) Balance(r Resource) int64 {
	switch r {
	case ResourceGold:
		return p.Gold
	case ResourceGems:
		return p.Gems
	case ResourceTickets:
		return p.Tickets
	case ResourceExpChips:
		return p.ExpChips
	}
	return 0
}

// SetBalance 写入货币余额，只允许账本调用
func (p *Player) SetBalance(r Resource, v int64) {
	switch r {
	case ResourceGold:
		p.Gold = v
	case ResourceGems:
		p.Gems = v
	case ResourceTickets:
		p.Tickets = v
	case ResourceExpChips:
		p.ExpChips = v
	}
}

// Clone 浅拷贝（无引用字段）
func (p *Player) Clone() *Player {
	c := *p
	return &c
}

// Balances 响应中的余额快照
type Balances struct {
	Gold     int64 `json:"gold"`
	Gems     int64 `json:"gems"`
	Tickets  int64 `json:"tickets"`
	ExpChips int64 `json:"expChips"`
}

// BalancesOf 提取余额
func BalancesOf(p *Player) Balances {
	return Balances{Gold: p.Gold, Gems: p.Gems, Tickets: p.Tickets, ExpChips: p.ExpChips}
}
