package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

func TestEnsureSlots(t *testing.T) {
	all, created := EnsureSlots("p1", nil)
	require.Len(t, all, 4)
	assert.Len(t, created, 4)
	for i, s := range all {
		assert.Equal(t, model.AllSlotTypes[i], s.Type)
		assert.Equal(t, 1, s.Level)
		assert.Equal(t, "p1", s.PlayerID)
	}

	existing := []*model.EquipmentSlot{{PlayerID: "p1", Type: model.SlotPC, Level: 4}}
	all, created = EnsureSlots("p1", existing)
	assert.Len(t, created, 3)
	assert.Same(t, existing[0], all[3])
}

func TestUpgradeEquipment(t *testing.T) {
	tb := loadTable(t)
	p := &model.Player{Gold: 1000}
	slot := &model.EquipmentSlot{Type: model.SlotCamera, Level: 1}

	res, err := UpgradeEquipment(tb, p, slot)
	require.NoError(t, err)
	assert.Equal(t, 2, res.NewLevel)
	assert.Equal(t, int64(1000), res.NextUpgradeCost)
	assert.Equal(t, int64(500), res.RemainingGold)

	_, err = UpgradeEquipment(tb, p, slot)
	assert.True(t, gameerr.Is(err, gameerr.KindInsufficientResource))
	assert.Equal(t, 2, slot.Level)
	assert.Equal(t, int64(500), p.Gold)
}

func TestUpgradeEquipmentMaxLevel(t *testing.T) {
	tb := loadTable(t)
	p := &model.Player{Gold: 1 << 40}
	slot := &model.EquipmentSlot{Type: model.SlotLight, Level: 9}

	res, err := UpgradeEquipment(tb, p, slot)
	require.NoError(t, err)
	assert.Equal(t, 10, res.NewLevel)
	assert.Equal(t, int64(0), res.NextUpgradeCost)

	gold := p.Gold
	_, err = UpgradeEquipment(tb, p, slot)
	assert.True(t, gameerr.Is(err, gameerr.KindStateConflict))
	assert.Equal(t, gold, p.Gold)
}

func TestUpgradeCostStrictlyIncreasing(t *testing.T) {
	tb := loadTable(t)
	prev := int64(0)
	for lvl := 1; lvl < tb.Equipment.MaxLevel; lvl++ {
		c := tb.UpgradeCost(lvl)
		assert.Greater(t, c, prev)
		prev = c
	}
}

func TestDescribeSlots(t *testing.T) {
	tb := loadTable(t)
	views := DescribeSlots(tb, []*model.EquipmentSlot{
		{Type: model.SlotCamera, Level: 3},
		{Type: model.SlotPC, Level: 10},
	})
	assert.Equal(t, SlotView{Type: model.SlotCamera, Level: 3, MaxLevel: 10, Bonus: 15, NextUpgradeCost: 1500}, views[0])
	assert.Equal(t, int64(0), views[1].NextUpgradeCost)
	assert.Equal(t, int64(50), views[1].Bonus)
}
