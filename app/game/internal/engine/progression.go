package engine

import (
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// LevelUpResult 升级结果
type LevelUpResult struct {
	NewLevel          int   `json:"newLevel"`
	CurrentExp        int64 `json:"currentExp"`
	RequiredExp       int64 `json:"requiredExp"`
	MaxLevel          int   `json:"maxLevel"`
	RemainingExpChips int64 `json:"remainingExpChips"`
}

// LevelUp 消耗经验芯片升级，到达上限后经验清零
func LevelUp(t *masterdata.Table, p *model.Player, inst *model.CharacterInstance, chips int64) (*LevelUpResult, error) {
	if chips < 1 {
		return nil, gameerr.Validation("expChipsToUse must be >= 1, got %d", chips)
	}
	def, ok := t.Definition(inst.DefinitionID)
	if !ok {
		return nil, gameerr.NotFound("character definition %s not found", inst.DefinitionID)
	}

	maxLevel := t.MaxLevel(def.Rarity, inst.Breakthrough)
	if inst.Level >= maxLevel {
		return nil, gameerr.StateConflict("character already at max level %d", maxLevel)
	}
	if err := Debit(p, model.ResourceExpChips, chips); err != nil {
		return nil, err
	}

	inst.Experience += chips * t.Character.ExpPerChip
	for inst.Level < maxLevel && inst.Experience >= t.RequiredExp(inst.Level) {
		inst.Experience -= t.RequiredExp(inst.Level)
		inst.Level++
	}

	res := &LevelUpResult{
		NewLevel:          inst.Level,
		MaxLevel:          maxLevel,
		RemainingExpChips: p.ExpChips,
	}
	if inst.Level >= maxLevel {
		inst.Experience = 0
	} else {
		res.RequiredExp = t.RequiredExp(inst.Level)
	}
	res.CurrentExp = inst.Experience
	return res, nil
}

// BreakthroughResult 突破结果
type BreakthroughResult struct {
	NewBreakthrough int `json:"newBreakthrough"`
	NewMaxLevel     int `json:"newMaxLevel"`
}

// Breakthrough 以同定义的另一实例为素材突破
// lookup 返回玩家持有的实例，不存在或不属于该玩家时返回 nil
// 成功后调用方负责删除 sacrifice
func Breakthrough(t *masterdata.Table, targetID, sacrificeID string, lookup func(id string) *model.CharacterInstance) (*BreakthroughResult, error) {
	if targetID == sacrificeID {
		return nil, gameerr.StateConflict("cannot use a character as its own breakthrough material")
	}
	target := lookup(targetID)
	if target == nil {
		return nil, gameerr.NotFound("character %s not found", targetID)
	}
	sacrifice := lookup(sacrificeID)
	if sacrifice == nil {
		return nil, gameerr.NotFound("character %s not found", sacrificeID)
	}
	if target.DefinitionID != sacrifice.DefinitionID {
		return nil, gameerr.StateConflict("breakthrough requires the same character, got %s and %s",
			target.DefinitionID, sacrifice.DefinitionID)
	}
	def, ok := t.Definition(target.DefinitionID)
	if !ok {
		return nil, gameerr.NotFound("character definition %s not found", target.DefinitionID)
	}

	target.Breakthrough++
	return &BreakthroughResult{
		NewBreakthrough: target.Breakthrough,
		NewMaxLevel:     t.MaxLevel(def.Rarity, target.Breakthrough),
	}, nil
}

// CharacterView 持有角色的展示数据
type CharacterView struct {
	InstanceID   string          `json:"instanceId"`
	DefinitionID string          `json:"characterId"`
	Name         string          `json:"characterName"`
	Rarity       model.Rarity    `json:"rarity"`
	Specialty    model.Specialty `json:"specialty"`
	Level        int             `json:"level"`
	Experience   int64           `json:"experience"`
	RequiredExp  int64           `json:"requiredExp"`
	Breakthrough int             `json:"breakthrough"`
	MaxLevel     int             `json:"maxLevel"`
	Stats        model.Stats     `json:"stats"`
	Passive      *model.Passive  `json:"passive,omitempty"`
}

// ScaledStats 等级加成后的四项能力
func ScaledStats(t *masterdata.Table, def *model.CharacterDefinition, level int) model.Stats {
	return model.Stats{
		Filming:  t.ScaledStat(def.Stats.Filming, level),
		Editing:  t.ScaledStat(def.Stats.Editing, level),
		Planning: t.ScaledStat(def.Stats.Planning, level),
		Design:   t.ScaledStat(def.Stats.Design, level),
	}
}

// DescribeCharacter 组装展示数据，定义缺失时返回 false
func DescribeCharacter(t *masterdata.Table, inst *model.CharacterInstance) (CharacterView, bool) {
	def, ok := t.Definition(inst.DefinitionID)
	if !ok {
		return CharacterView{}, false
	}
	maxLevel := t.MaxLevel(def.Rarity, inst.Breakthrough)
	v := CharacterView{
		InstanceID:   inst.InstanceID,
		DefinitionID: def.ID,
		Name:         def.Name,
		Rarity:       def.Rarity,
		Specialty:    def.Specialty,
		Level:        inst.Level,
		Experience:   inst.Experience,
		Breakthrough: inst.Breakthrough,
		MaxLevel:     maxLevel,
		Stats:        ScaledStats(t, def, inst.Level),
		Passive:      def.Passive,
	}
	if inst.Level < maxLevel {
		v.RequiredExp = t.RequiredExp(inst.Level)
	}
	return v, true
}
