// Package gameerr 定义玩法层的错误分类
package gameerr

import (
	"fmt"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

// Kind 错误分类
type Kind int

const (
	// KindUnknown 非玩法错误（基础设施故障等）
	KindUnknown Kind = iota
	KindValidation
	KindInsufficientResource
	KindNotFound
	KindStateConflict
	KindStillInProgress
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindInsufficientResource:
		return "insufficient_resource"
	case KindNotFound:
		return "not_found"
	case KindStateConflict:
		return "state_conflict"
	case KindStillInProgress:
		return "still_in_progress"
	}
	return "unknown"
}

// Error 玩法错误
type Error struct {
	Kind    Kind
	Message string

	// InsufficientResource
	Resource  model.Resource
	Required  int64
	Available int64

	// StillInProgress
	RemainingSeconds int64
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInsufficientResource:
		return fmt.Sprintf("insufficient %s: required %d, available %d", e.Resource, e.Required, e.Available)
	case KindStillInProgress:
		return fmt.Sprintf("%s: %d seconds remaining", e.Message, e.RemainingSeconds)
	}
	return e.Message
}

// Validation 参数非法
func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound 对象不存在或不属于该玩家
func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// StateConflict 当前状态不允许该操作
func StateConflict(format string, args ...any) error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// Insufficient 余额不足
func Insufficient(r model.Resource, required, available int64) error {
	return &Error{Kind: KindInsufficientResource, Resource: r, Required: required, Available: available}
}

// StillInProgress 尚未完成，remaining 为剩余整秒
func StillInProgress(remaining int64) error {
	return &Error{Kind: KindStillInProgress, Message: "content still in production", RemainingSeconds: remaining}
}

// As 提取玩法错误，支持被 errors.Wrap 包装的情况
func As(err error) (*Error, bool) {
	var ge *Error
	if errors.As(err, &ge) {
		return ge, true
	}
	return nil, false
}

// KindOf 错误分类，非玩法错误返回 KindUnknown
func KindOf(err error) Kind {
	if ge, ok := As(err); ok {
		return ge.Kind
	}
	return KindUnknown
}

// Is 判断错误分类
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
