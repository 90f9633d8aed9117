package kafka

import "time"

// Config Kafka 生产者配置
type Config struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`

	Producer ProducerConfig `mapstructure:"producer"`

	// SASL 可选
	SASL *SASLConfig `mapstructure:"sasl"`
	// TLS 可选
	TLS *TLSConfig `mapstructure:"tls"`
}

// ProducerConfig 写入参数
type ProducerConfig struct {
	// Async 异步发送，失败只在回调中记录
	Async        bool          `mapstructure:"async"`
	BatchSize    int           `mapstructure:"batch_size"`
	BatchTimeout time.Duration `mapstructure:"batch_timeout"`
	MaxRetries   int           `mapstructure:"max_retries"`

	// RequiredAcks 0 不等待，1 等 leader，-1 等全部副本
	RequiredAcks int `mapstructure:"required_acks" validate:"oneof=-1 0 1"`

	// Compression none, gzip, snappy, lz4, zstd
	Compression string `mapstructure:"compression" validate:"omitempty,oneof=none gzip snappy lz4 zstd"`

	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
}

// SASLConfig SASL 认证
type SASLConfig struct {
	// Mechanism PLAIN, SCRAM-SHA-256, SCRAM-SHA-512
	Mechanism string `mapstructure:"mechanism"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
}

// TLSConfig TLS 配置
type TLSConfig struct {
	Enable             bool   `mapstructure:"enable"`
	CertFile           string `mapstructure:"cert_file"`
	KeyFile            string `mapstructure:"key_file"`
	CAFile             string `mapstructure:"ca_file"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
}

// DefaultConfig 默认配置
func DefaultConfig() *Config {
	return &Config{
		Brokers: []string{"localhost:9092"},
		Producer: ProducerConfig{
			Async:        true,
			BatchSize:    100,
			BatchTimeout: time.Second,
			MaxRetries:   3,
			RequiredAcks: -1,
			Compression:  "snappy",
			WriteTimeout: 10 * time.Second,
			ReadTimeout:  10 * time.Second,
		},
	}
}

func (c *Config) validate() error {
	if len(c.Brokers) == 0 {
		return ErrNoBrokers
	}
	if c.Topic == "" {
		return ErrEmptyTopic
	}
	return nil
}
