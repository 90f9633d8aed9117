package otel

import "time"

// ExporterType 导出器类型
type ExporterType string

const (
	ExporterOTLPHTTP ExporterType = "otlp-http"
	ExporterOTLPGRPC ExporterType = "otlp-grpc"
	// ExporterStdout 调试用，span 打印到标准输出
	ExporterStdout ExporterType = "stdout"
)

// SamplerType 采样类型
type SamplerType string

const (
	SamplerAlways SamplerType = "always"
	SamplerNever  SamplerType = "never"
	SamplerRatio  SamplerType = "ratio"
	// SamplerParent 跟随上游采样决策，无上游时全采
	SamplerParent SamplerType = "parent"
)

// Config 追踪配置
type Config struct {
	// Enabled 为 false 时使用 noop tracer
	Enabled     bool   `mapstructure:"enabled"`
	ServiceName string `mapstructure:"service_name"`

	// Endpoint OTLP HTTP 默认 localhost:4318，gRPC 默认 localhost:4317
	Endpoint     string       `mapstructure:"endpoint"`
	ExporterType ExporterType `mapstructure:"exporter_type" validate:"omitempty,oneof=otlp-http otlp-grpc stdout"`
	Insecure     bool         `mapstructure:"insecure"`

	Sampler     SamplerConfig     `mapstructure:"sampler"`
	BatchExport BatchExportConfig `mapstructure:"batch_export"`

	// Attributes 附加到 resource 的属性
	Attributes map[string]string `mapstructure:"attributes"`

	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// SamplerConfig 采样配置
type SamplerConfig struct {
	Type  SamplerType `mapstructure:"type" validate:"omitempty,oneof=always never ratio parent"`
	Ratio float64     `mapstructure:"ratio" validate:"gte=0,lte=1"`
}

// BatchExportConfig 批量导出配置
type BatchExportConfig struct {
	BatchSize     int           `mapstructure:"batch_size"`
	MaxQueueSize  int           `mapstructure:"max_queue_size"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout"`
	ExportTimeout time.Duration `mapstructure:"export_timeout"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		ServiceName:  "creatorsim-game",
		Endpoint:     "localhost:4318",
		ExporterType: ExporterOTLPHTTP,
		Insecure:     true,
		Sampler: SamplerConfig{
			Type:  SamplerParent,
			Ratio: 1.0,
		},
		BatchExport: BatchExportConfig{
			BatchSize:     512,
			MaxQueueSize:  2048,
			BatchTimeout:  5 * time.Second,
			ExportTimeout: 30 * time.Second,
		},
		ShutdownTimeout: 5 * time.Second,
	}
}

func (c *Config) validate() error {
	if c.ServiceName == "" {
		return ErrInvalidServiceName
	}
	if c.Sampler.Type == SamplerRatio && (c.Sampler.Ratio < 0 || c.Sampler.Ratio > 1) {
		return ErrInvalidSamplerRatio
	}
	return nil
}
