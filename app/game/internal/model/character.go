package model

import (
	"slices"
	"time"
)

// Rarity 稀有度
type Rarity string

const (
	RarityC Rarity = "C"
	RarityB Rarity = "B"
	RarityA Rarity = "A"
	RarityS Rarity = "S"
)

// RarityOrder 累计阈值的计算顺序，由高到低
var RarityOrder = []Rarity{RarityS, RarityA, RarityB, RarityC}

// Valid 是否为已知稀有度
func (r Rarity) Valid() bool {
	return slices.Contains(RarityOrder, r)
}

// Specialty 擅长方向
type Specialty string

const (
	SpecialtyFilming  Specialty = "Filming"
	SpecialtyEditing  Specialty = "Editing"
	SpecialtyPlanning Specialty = "Planning"
	SpecialtyDesign   Specialty = "Design"
)

// Stats 四项能力
type Stats struct {
	Filming  int64 `json:"filming"`
	Editing  int64 `json:"editing"`
	Planning int64 `json:"planning"`
	Design   int64 `json:"design"`
}

// Total 四项之和
func (s Stats) Total() int64 {
	return s.Filming + s.Editing + s.Planning + s.Design
}

// Add 逐项相加
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Filming:  s.Filming + o.Filming,
		Editing:  s.Editing + o.Editing,
		Planning: s.Planning + o.Planning,
		Design:   s.Design + o.Design,
	}
}

// Passive 被动技能
type Passive struct {
	Description string  `json:"description"`
	Multiplier  float64 `json:"multiplier"`
}

// CharacterDefinition 角色定义，随配置表加载，按指针共享且只读
type CharacterDefinition struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Rarity    Rarity    `json:"rarity"`
	Specialty Specialty `json:"specialty"`
	Stats     Stats     `json:"stats"`
	Passive   *Passive  `json:"passive,omitempty"`
}

// CharacterInstance 玩家持有的角色实例，对应 character_instances 表
type CharacterInstance struct {
	InstanceID   string    `db:"instance_id" json:"instanceId"`
	PlayerID     string    `db:"player_id" json:"playerId"`
	DefinitionID string    `db:"definition_id" json:"definitionId"`
	Level        int       `db:"level" json:"level"`
	Experience   int64     `db:"experience" json:"experience"`
	Breakthrough int       `db:"breakthrough" json:"breakthrough"`
	AcquiredAt   time.Time `db:"acquired_at" json:"acquiredAt"`
}

// Clone 拷贝
func (c *CharacterInstance) Clone() *CharacterInstance {
	n := *c
	return &n
}
