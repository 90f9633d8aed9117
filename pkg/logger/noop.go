// pkg/logger/noop.go
package logger

import "context"

var _ Logger = (*NoopLogger)(nil)

// NoopLogger 丢弃所有日志，用于测试和未注入 logger 的组件
type NoopLogger struct{}

var noop = &NoopLogger{}

// NewNoop 返回共享的空 logger
func NewNoop() *NoopLogger {
	return noop
}

func (l *NoopLogger) Debug(string, ...interface{})                         {}
func (l *NoopLogger) Info(string, ...interface{})                          {}
func (l *NoopLogger) Warn(string, ...interface{})                          {}
func (l *NoopLogger) Error(string, ...interface{})                         {}
func (l *NoopLogger) DebugContext(context.Context, string, ...interface{}) {}
func (l *NoopLogger) InfoContext(context.Context, string, ...interface{})  {}
func (l *NoopLogger) WarnContext(context.Context, string, ...interface{})  {}
func (l *NoopLogger) ErrorContext(context.Context, string, ...interface{}) {}
func (l *NoopLogger) Named(string) Logger                                  { return l }
func (l *NoopLogger) WithFields(...interface{}) Logger                     { return l }
func (l *NoopLogger) Sync() error                                          { return nil }
