package engine

import (
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// EnsureSlots 补齐缺失的装备槽（1 级），返回按 AllSlotTypes 排序的全部槽与新建的槽
func EnsureSlots(playerID string, existing []*model.EquipmentSlot) (all, created []*model.EquipmentSlot) {
	byType := make(map[model.SlotType]*model.EquipmentSlot, len(existing))
	for _, s := range existing {
		byType[s.Type] = s
	}
	all = make([]*model.EquipmentSlot, 0, len(model.AllSlotTypes))
	for _, st := range model.AllSlotTypes {
		s, ok := byType[st]
		if !ok {
			s = &model.EquipmentSlot{PlayerID: playerID, Type: st, Level: 1}
			created = append(created, s)
		}
		all = append(all, s)
	}
	return all, created
}

// UpgradeResult 装备升级结果
type UpgradeResult struct {
	Type            model.SlotType `json:"equipmentType"`
	NewLevel        int            `json:"newLevel"`
	NextUpgradeCost int64          `json:"nextUpgradeCost"`
	RemainingGold   int64          `json:"remainingGold"`
}

// UpgradeEquipment 花费 level*costPerLevel 金币升一级
func UpgradeEquipment(t *masterdata.Table, p *model.Player, slot *model.EquipmentSlot) (*UpgradeResult, error) {
	if slot.Level >= t.Equipment.MaxLevel {
		return nil, gameerr.StateConflict("%s already at max level %d", slot.Type, t.Equipment.MaxLevel)
	}
	if err := Debit(p, model.ResourceGold, t.UpgradeCost(slot.Level)); err != nil {
		return nil, err
	}
	slot.Level++
	return &UpgradeResult{
		Type:            slot.Type,
		NewLevel:        slot.Level,
		NextUpgradeCost: NextUpgradeCost(t, slot.Level),
		RemainingGold:   p.Gold,
	}, nil
}

// NextUpgradeCost 满级时为 0
func NextUpgradeCost(t *masterdata.Table, level int) int64 {
	if level >= t.Equipment.MaxLevel {
		return 0
	}
	return t.UpgradeCost(level)
}

// SlotView 装备槽展示数据
type SlotView struct {
	Type            model.SlotType `json:"equipmentType"`
	Level           int            `json:"level"`
	MaxLevel        int            `json:"maxLevel"`
	Bonus           int64          `json:"bonusValue"`
	NextUpgradeCost int64          `json:"nextUpgradeCost"`
}

// DescribeSlots 装备列表
func DescribeSlots(t *masterdata.Table, slots []*model.EquipmentSlot) []SlotView {
	out := make([]SlotView, 0, len(slots))
	for _, s := range slots {
		out = append(out, SlotView{
			Type:            s.Type,
			Level:           s.Level,
			MaxLevel:        t.Equipment.MaxLevel,
			Bonus:           t.Bonus(s.Level),
			NextUpgradeCost: NextUpgradeCost(t, s.Level),
		})
	}
	return out
}
