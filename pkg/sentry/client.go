// Package sentry 错误上报：内部错误与 panic 发往 Sentry，玩法拒绝不上报
package sentry

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/getsentry/sentry-go"

	"github.com/lk2023060901/creatorsim/pkg/config"
)

var (
	// ErrInvalidConfig 无效配置
	ErrInvalidConfig = errors.New("sentry: invalid config")
	// ErrClientClosed 客户端已关闭
	ErrClientClosed = errors.New("sentry: client closed")
)

// Client Sentry 客户端，持有独立 Hub，不修改 SDK 全局状态
type Client struct {
	hub    *sentry.Hub
	config *Config
	closed atomic.Bool

	captured atomic.Uint64
	dropped  atomic.Uint64
}

// Option 客户端选项
type Option func(*sentry.ClientOptions)

// WithBeforeSend 事件发送前回调，返回 nil 丢弃事件
func WithBeforeSend(fn func(*sentry.Event, *sentry.EventHint) *sentry.Event) Option {
	return func(o *sentry.ClientOptions) {
		o.BeforeSend = fn
	}
}

// New 创建客户端
func New(cfg *Config, opts ...Option) (*Client, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if err := merged.validate(); err != nil {
		return nil, err
	}

	options := merged.clientOptions()
	for _, opt := range opts {
		opt(&options)
	}
	client, err := sentry.NewClient(options)
	if err != nil {
		return nil, errors.Wrap(err, "sentry: create client")
	}

	hub := sentry.NewHub(client, sentry.NewScope())
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range merged.Tags {
			scope.SetTag(k, v)
		}
	})
	return &Client{hub: hub, config: merged}, nil
}

// hubFor 优先使用请求上下文中的 Hub
func (c *Client) hubFor(ctx context.Context) *sentry.Hub {
	if ctx != nil {
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			return hub
		}
	}
	return c.hub
}

// CaptureError 上报错误
func (c *Client) CaptureError(ctx context.Context, err error) *sentry.EventID {
	if c == nil || err == nil || c.closed.Load() {
		return nil
	}
	id := c.hubFor(ctx).CaptureException(err)
	c.count(id)
	return id
}

// RecoverPanic 上报 panic，不重新抛出
func (c *Client) RecoverPanic(ctx context.Context, recovered any) *sentry.EventID {
	if c == nil || c.closed.Load() {
		return nil
	}
	id := c.hubFor(ctx).RecoverWithContext(ctx, recovered)
	c.count(id)
	return id
}

func (c *Client) count(id *sentry.EventID) {
	if id != nil && *id != "" {
		c.captured.Add(1)
	} else {
		c.dropped.Add(1)
	}
}

// Captured 已上报事件数
func (c *Client) Captured() uint64 {
	return c.captured.Load()
}

// Close 等待事件发送完毕
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	if c.closed.Swap(true) {
		return ErrClientClosed
	}
	c.hub.Flush(c.config.ShutdownTimeout)
	return nil
}
