package model

import "strings"

// SlotType 装备槽类型
type SlotType string

const (
	SlotCamera     SlotType = "Camera"
	SlotMicrophone SlotType = "Microphone"
	SlotLight      SlotType = "Light"
	SlotPC         SlotType = "PC"
)

// AllSlotTypes 全部装备槽，顺序即展示顺序
var AllSlotTypes = []SlotType{SlotCamera, SlotMicrophone, SlotLight, SlotPC}

// ParseSlotType 解析装备槽类型，大小写不敏感
func ParseSlotType(s string) (SlotType, bool) {
	for _, t := range AllSlotTypes {
		if strings.EqualFold(string(t), s) {
			return t, true
		}
	}
	return "", false
}

// EquipmentSlot 装备槽，对应 equipment_slots 表
type EquipmentSlot struct {
	PlayerID string   `db:"player_id" json:"-"`
	Type     SlotType `db:"slot_type" json:"type"`
	Level    int      `db:"level" json:"level"`
}

// Clone 拷贝
func (e *EquipmentSlot) Clone() *EquipmentSlot {
	n := *e
	return &n
}
