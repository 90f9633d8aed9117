// Package otel OpenTelemetry 追踪：TracerProvider 构建与关闭
package otel

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/lk2023060901/creatorsim/pkg/config"
)

var (
	ErrInvalidServiceName  = errors.New("otel: service name is required")
	ErrInvalidSamplerRatio = errors.New("otel: sampler ratio must be between 0 and 1")
	ErrExporterFailed      = errors.New("otel: failed to create exporter")
	ErrProviderClosed      = errors.New("otel: provider is closed")
)

// Provider 追踪提供者，未启用时只提供 noop tracer
type Provider struct {
	config   *Config
	provider *sdktrace.TracerProvider
	noop     trace.TracerProvider
	closed   atomic.Bool
}

// Option Provider 选项
type Option func(*options)

type options struct {
	exporter sdktrace.SpanExporter
	global   bool
}

// WithExporter 使用指定导出器并同步导出，测试中配合内存导出器
func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(o *options) {
		o.exporter = exp
	}
}

// WithoutGlobal 不注册为全局 TracerProvider
func WithoutGlobal() Option {
	return func(o *options) {
		o.global = false
	}
}

// New 创建追踪提供者
func New(cfg *Config, opts ...Option) (*Provider, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	o := &options{global: true}
	for _, opt := range opts {
		opt(o)
	}

	p := &Provider{config: merged, noop: noop.NewTracerProvider()}
	if !merged.Enabled {
		return p, nil
	}
	if err := merged.validate(); err != nil {
		return nil, err
	}

	// 1. 导出器
	var spanProcessor sdktrace.TracerProviderOption
	if o.exporter != nil {
		spanProcessor = sdktrace.WithSyncer(o.exporter)
	} else {
		exp, err := newExporter(context.Background(), merged)
		if err != nil {
			return nil, err
		}
		spanProcessor = sdktrace.WithBatcher(exp,
			sdktrace.WithBatchTimeout(merged.BatchExport.BatchTimeout),
			sdktrace.WithExportTimeout(merged.BatchExport.ExportTimeout),
			sdktrace.WithMaxExportBatchSize(merged.BatchExport.BatchSize),
			sdktrace.WithMaxQueueSize(merged.BatchExport.MaxQueueSize),
		)
	}

	// 2. resource 与采样
	attrs := []attribute.KeyValue{semconv.ServiceName(merged.ServiceName)}
	for k, v := range merged.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	p.provider = sdktrace.NewTracerProvider(
		spanProcessor,
		sdktrace.WithResource(resource.NewWithAttributes(semconv.SchemaURL, attrs...)),
		sdktrace.WithSampler(newSampler(merged.Sampler)),
	)

	// 3. 全局注册，跨服务透传 traceparent
	if o.global {
		otel.SetTracerProvider(p.provider)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
	}
	return p, nil
}

func newSampler(cfg SamplerConfig) sdktrace.Sampler {
	switch cfg.Type {
	case SamplerAlways:
		return sdktrace.AlwaysSample()
	case SamplerNever:
		return sdktrace.NeverSample()
	case SamplerRatio:
		return sdktrace.TraceIDRatioBased(cfg.Ratio)
	default:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
}

// Tracer 获取 tracer
func (p *Provider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	if p == nil {
		return noop.NewTracerProvider().Tracer(name, opts...)
	}
	if p.provider == nil {
		return p.noop.Tracer(name, opts...)
	}
	return p.provider.Tracer(name, opts...)
}

// Enabled 是否真正导出 span
func (p *Provider) Enabled() bool {
	return p != nil && p.provider != nil
}

// Shutdown 导出剩余 span 并关闭
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.closed.Swap(true) {
		return ErrProviderClosed
	}
	if p.provider == nil {
		return nil
	}
	return p.provider.Shutdown(ctx)
}

// Close 使用配置的超时关闭
func (p *Provider) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.ShutdownTimeout)
	defer cancel()
	return p.Shutdown(ctx)
}
