package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Hook 日志写入前的回调，返回 false 丢弃该条日志
type Hook interface {
	OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool
}

// HookFunc 函数式 Hook
type HookFunc func(entry zapcore.Entry, fields []zapcore.Field) bool

func (f HookFunc) OnWrite(entry zapcore.Entry, fields []zapcore.Field) bool {
	return f(entry, fields)
}

// HookedCore 在写入前依次执行钩子的 Core
type HookedCore struct {
	zapcore.Core
	hooks []Hook
}

// NewHookedCore 包装 core
func NewHookedCore(core zapcore.Core, hooks ...Hook) zapcore.Core {
	return &HookedCore{Core: core, hooks: hooks}
}

func (h *HookedCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if h.Enabled(entry.Level) {
		return ce.AddCore(entry, h)
	}
	return ce
}

func (h *HookedCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	for _, hook := range h.hooks {
		if !hook.OnWrite(entry, fields) {
			return nil
		}
	}
	return h.Core.Write(entry, fields)
}

func (h *HookedCore) With(fields []zapcore.Field) zapcore.Core {
	return &HookedCore{Core: h.Core.With(fields), hooks: h.hooks}
}

const redacted = "***REDACTED***"

// SensitiveDataHook 把敏感字段的值替换为 ***REDACTED***
// key 不区分大小写；以 * 开头的写法按后缀匹配，如 *_token 覆盖 access_token、refresh_token
func SensitiveDataHook(sensitiveKeys []string) Hook {
	exact := make(map[string]struct{}, len(sensitiveKeys))
	var suffixes []string
	for _, k := range sensitiveKeys {
		k = strings.ToLower(strings.TrimSpace(k))
		if rest, ok := strings.CutPrefix(k, "*"); ok {
			if rest != "" {
				suffixes = append(suffixes, rest)
			}
			continue
		}
		exact[k] = struct{}{}
	}

	sensitive := func(key string) bool {
		key = strings.ToLower(key)
		if _, ok := exact[key]; ok {
			return true
		}
		for _, suffix := range suffixes {
			if strings.HasSuffix(key, suffix) {
				return true
			}
		}
		return false
	}

	return HookFunc(func(_ zapcore.Entry, fields []zapcore.Field) bool {
		for i := range fields {
			if sensitive(fields[i].Key) {
				fields[i] = zap.String(fields[i].Key, redacted)
			}
		}
		return true
	})
}
