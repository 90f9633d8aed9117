// Package event 经济事件：写操作提交后对外广播，供数据分析消费
package event

import (
	"context"
	"sync"
	"time"
)

// Type 事件类型
type Type string

const (
	TypeGachaDraw             Type = "gacha.draw"
	TypeCharacterLevelUp      Type = "character.level_up"
	TypeCharacterBreakthrough Type = "character.breakthrough"
	TypeEquipmentUpgrade      Type = "equipment.upgrade"
	TypeContentStarted        Type = "content.started"
	TypeContentCompleted      Type = "content.completed"
	TypeContentUploaded       Type = "content.uploaded"
	TypeAdminGrant            Type = "admin.grant"
)

// Event 一条已提交的玩家变更
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	PlayerID   string    `json:"playerId"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

// Publisher 事件发布，调用方不因发布失败回滚
type Publisher interface {
	Publish(ctx context.Context, events ...Event) error
}

// Noop 丢弃全部事件
type Noop struct{}

func (Noop) Publish(context.Context, ...Event) error { return nil }

// Recorder 内存记录，测试用
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, events ...Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
	return nil
}

// Events 已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType 按类型过滤
func (r *Recorder) OfType(t Type) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
