package masterdata

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// ErrInvalidTable 配置表未通过校验
var ErrInvalidTable = errors.New("masterdata: invalid table")

// IntRange 闭区间
type IntRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

// GachaBalance 抽卡数值
type GachaBalance struct {
	GemCostPerDraw int64                `json:"gemCostPerDraw"`
	MaxDrawCount   int                  `json:"maxDrawCount"`
	RarityPercent  map[model.Rarity]int `json:"rarityPercent"`
}

// CharacterBalance 角色成长数值
type CharacterBalance struct {
	BaseMaxLevel           map[model.Rarity]int `json:"baseMaxLevel"`
	BreakthroughLevelBonus int                  `json:"breakthroughLevelBonus"`
	ExpPerChip             int64                `json:"expPerChip"`
	ExpPerLevelFactor      int64                `json:"expPerLevelFactor"`
	LevelStatMultiplier    float64              `json:"levelStatMultiplier"`
}

// ContentBalance 内容制作数值
type ContentBalance struct {
	ProductionSeconds  map[model.Genre]int64 `json:"productionSeconds"`
	ViewsPerQuality    IntRange              `json:"viewsPerQuality"`
	LikesPercent       IntRange              `json:"likesPercent"`
	ViewsPerGold       int64                 `json:"viewsPerGold"`
	SubscriberPerViews IntRange              `json:"subscriberPerViews"`
}

// EquipmentBalance 装备数值
type EquipmentBalance struct {
	MaxLevel      int   `json:"maxLevel"`
	CostPerLevel  int64 `json:"costPerLevel"`
	BonusPerLevel int64 `json:"bonusPerLevel"`
}

// PlayerStart 新玩家初始货币
type PlayerStart struct {
	Gold     int64 `json:"gold"`
	Gems     int64 `json:"gems"`
	Tickets  int64 `json:"tickets"`
	ExpChips int64 `json:"expChips"`
}

// Milestone 订阅里程碑，只展示不做解锁校验
type Milestone struct {
	RequiredSubscribers int64  `json:"requiredSubscribers"`
	UnlockType          string `json:"unlockType"`
	UnlockValue         string `json:"unlockValue"`
	Description         string `json:"description"`
}

// Table 一个版本的全部数值，加载后只读
type Table struct {
	Version     int                          `json:"version"`
	Gacha       GachaBalance                 `json:"gacha"`
	Character   CharacterBalance             `json:"character"`
	Content     ContentBalance               `json:"content"`
	Equipment   EquipmentBalance             `json:"equipment"`
	PlayerStart PlayerStart                  `json:"playerStart"`
	Milestones  []Milestone                  `json:"milestones"`
	Characters  []*model.CharacterDefinition `json:"characters"`

	// Checksum 表内容指纹，客户端据此判断是否需要重新拉取
	Checksum string `json:"checksum"`

	byID     map[string]*model.CharacterDefinition
	byRarity map[model.Rarity][]*model.CharacterDefinition
}

// Threshold 稀有度累计上界（百分比，左闭右开）
type Threshold struct {
	Rarity model.Rarity
	Upper  float64
}

func (t *Table) buildIndex() {
	t.byID = make(map[string]*model.CharacterDefinition, len(t.Characters))
	t.byRarity = make(map[model.Rarity][]*model.CharacterDefinition)
	for _, def := range t.Characters {
		t.byID[def.ID] = def
		t.byRarity[def.Rarity] = append(t.byRarity[def.Rarity], def)
	}

	t.Checksum = ""
	if raw, err := json.Marshal(t); err == nil {
		t.Checksum = strconv.FormatUint(xxhash.Sum64(raw), 16)
	}
}

// DrawCountLimit 单次抽卡数量的协议上限，数值表只能调低
const DrawCountLimit = 10

// Validate 校验数值的一致性
func (t *Table) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, errors.Newf(format, args...).Error())
	}

	// 1. 抽卡
	if t.Gacha.MaxDrawCount < 1 || t.Gacha.MaxDrawCount > DrawCountLimit {
		add("gacha.maxDrawCount must be in [1,%d], got %d", DrawCountLimit, t.Gacha.MaxDrawCount)
	}
	if t.Gacha.GemCostPerDraw < 0 {
		add("gacha.gemCostPerDraw must be >= 0")
	}
	sum := 0
	for r, p := range t.Gacha.RarityPercent {
		if !r.Valid() {
			add("gacha.rarityPercent: unknown rarity %q", r)
		}
		if p < 0 {
			add("gacha.rarityPercent[%s] must be >= 0", r)
		}
		sum += p
	}
	if sum != 100 {
		add("gacha.rarityPercent must sum to 100, got %d", sum)
	}

	// 2. 角色定义
	seen := make(map[string]struct{}, len(t.Characters))
	counts := make(map[model.Rarity]int)
	for _, def := range t.Characters {
		if def == nil || def.ID == "" {
			add("characters: empty definition id")
			continue
		}
		if _, dup := seen[def.ID]; dup {
			add("characters: duplicate id %s", def.ID)
		}
		seen[def.ID] = struct{}{}
		if !def.Rarity.Valid() {
			add("characters[%s]: unknown rarity %q", def.ID, def.Rarity)
		}
		counts[def.Rarity]++
	}
	for _, r := range model.RarityOrder {
		if t.Gacha.RarityPercent[r] > 0 && counts[r] == 0 {
			add("rarity %s has probability but no definitions", r)
		}
	}

	// 3. 成长
	for _, r := range model.RarityOrder {
		if t.Character.BaseMaxLevel[r] < 1 {
			add("character.baseMaxLevel[%s] must be >= 1", r)
		}
	}
	if t.Character.BreakthroughLevelBonus < 0 {
		add("character.breakthroughLevelBonus must be >= 0")
	}
	if t.Character.ExpPerChip < 1 {
		add("character.expPerChip must be >= 1")
	}
	if t.Character.ExpPerLevelFactor < 1 {
		add("character.expPerLevelFactor must be >= 1")
	}
	if t.Character.LevelStatMultiplier < 0 {
		add("character.levelStatMultiplier must be >= 0")
	}

	// 4. 内容
	for _, g := range model.AllGenres {
		if t.Content.ProductionSeconds[g] <= 0 {
			add("content.productionSeconds[%s] must be > 0", g)
		}
	}
	checkRange := func(name string, r IntRange, lowest int64) {
		if r.Min > r.Max {
			add("content.%s: min %d > max %d", name, r.Min, r.Max)
		}
		if r.Min < lowest {
			add("content.%s: min must be >= %d", name, lowest)
		}
	}
	checkRange("viewsPerQuality", t.Content.ViewsPerQuality, 0)
	checkRange("likesPercent", t.Content.LikesPercent, 0)
	checkRange("subscriberPerViews", t.Content.SubscriberPerViews, 1)
	if t.Content.ViewsPerGold < 1 {
		add("content.viewsPerGold must be >= 1")
	}

	// 5. 装备与初始货币
	if t.Equipment.MaxLevel < 1 {
		add("equipment.maxLevel must be >= 1")
	}
	if t.Equipment.CostPerLevel <= 0 {
		add("equipment.costPerLevel must be > 0")
	}
	if t.Equipment.BonusPerLevel <= 0 {
		add("equipment.bonusPerLevel must be > 0")
	}
	ps := t.PlayerStart
	if ps.Gold < 0 || ps.Gems < 0 || ps.Tickets < 0 || ps.ExpChips < 0 {
		add("playerStart balances must be >= 0")
	}

	if len(problems) > 0 {
		return errors.Wrap(ErrInvalidTable, strings.Join(problems, "; "))
	}
	return nil
}

// RarityThresholds 按 S、A、B、C 的顺序累计概率上界
func (t *Table) RarityThresholds() []Threshold {
	out := make([]Threshold, 0, len(model.RarityOrder))
	acc := 0
	for _, r := range model.RarityOrder {
		p := t.Gacha.RarityPercent[r]
		if p <= 0 {
			continue
		}
		acc += p
		out = append(out, Threshold{Rarity: r, Upper: float64(acc)})
	}
	return out
}

// MaxLevel 稀有度与突破次数决定的等级上限
func (t *Table) MaxLevel(r model.Rarity, breakthrough int) int {
	return t.Character.BaseMaxLevel[r] + breakthrough*t.Character.BreakthroughLevelBonus
}

// RequiredExp 从 level 升到 level+1 所需经验
func (t *Table) RequiredExp(level int) int64 {
	return int64(level) * t.Character.ExpPerLevelFactor
}

// ScaledStat 等级加成后的单项能力，向零截断
// 加 1e-9 吸收 0.02 这类系数的二进制误差，保证 50*1.98 得到 99
func (t *Table) ScaledStat(base int64, level int) int64 {
	v := float64(base) * (1 + float64(level-1)*t.Character.LevelStatMultiplier)
	return int64(math.Trunc(v + 1e-9))
}

// ProductionSeconds 内容类型的制作时长
func (t *Table) ProductionSeconds(g model.Genre) int64 {
	return t.Content.ProductionSeconds[g]
}

// UpgradeCost 从 level 升级所需金币
func (t *Table) UpgradeCost(level int) int64 {
	return int64(level) * t.Equipment.CostPerLevel
}

// Bonus 装备等级对应的加成值
func (t *Table) Bonus(level int) int64 {
	return int64(level) * t.Equipment.BonusPerLevel
}

// DefinitionsByRarity 某稀有度的全部角色定义
func (t *Table) DefinitionsByRarity(r model.Rarity) []*model.CharacterDefinition {
	return t.byRarity[r]
}

// Definition 按 id 查找角色定义
func (t *Table) Definition(id string) (*model.CharacterDefinition, bool) {
	def, ok := t.byID[id]
	return def, ok
}
