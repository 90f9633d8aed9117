package model

import "time"

// PaidWith 抽卡支付方式
type PaidWith string

const (
	PaidWithTicket PaidWith = "ticket"
	PaidWithGem    PaidWith = "gem"
)

// GachaRecord 抽卡记录，每个铸造出的实例一行，对应 gacha_records 表
type GachaRecord struct {
	ID           string    `db:"id" json:"id"`
	PlayerID     string    `db:"player_id" json:"playerId"`
	InstanceID   string    `db:"instance_id" json:"instanceId"`
	DefinitionID string    `db:"definition_id" json:"definitionId"`
	Rarity       Rarity    `db:"rarity" json:"rarity"`
	IsNew        bool      `db:"is_new" json:"isNew"`
	PaidWith     PaidWith  `db:"paid_with" json:"paidWith"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
