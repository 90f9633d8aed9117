// Package kafka 基于 kafka-go 的单 topic 生产者
package kafka

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/kafka-go"

	"github.com/lk2023060901/creatorsim/pkg/config"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// Message 待发送消息，同一 Key 落在同一分区
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
	Time    time.Time
}

// ProducerStats 发送统计，异步模式下成功失败在回调中累计
type ProducerStats struct {
	Produced  int64
	Succeeded int64
	Failed    int64
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer 生产者
type Producer struct {
	config *Config
	writer messageWriter
	logger logger.Logger

	produced  atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	closed    atomic.Bool
}

// NewProducer 创建生产者，连接在首次写入时建立
func NewProducer(cfg *Config, l logger.Logger) (*Producer, error) {
	merged, err := config.MergeConfig(DefaultConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if cfg != nil && !cfg.Producer.Async {
		merged.Producer.Async = false
	}
	if err := merged.validate(); err != nil {
		return nil, err
	}

	p := &Producer{
		config: merged,
		logger: l.Named("kafka.producer"),
	}

	pc := merged.Producer
	w := &kafka.Writer{
		Addr:                   kafka.TCP(merged.Brokers...),
		Topic:                  merged.Topic,
		Balancer:               &kafka.Hash{},
		BatchSize:              pc.BatchSize,
		BatchTimeout:           pc.BatchTimeout,
		MaxAttempts:            pc.MaxRetries + 1,
		WriteTimeout:           pc.WriteTimeout,
		ReadTimeout:            pc.ReadTimeout,
		RequiredAcks:           kafka.RequiredAcks(pc.RequiredAcks),
		Async:                  pc.Async,
		Compression:            compression(pc.Compression),
		AllowAutoTopicCreation: true,
	}
	if pc.Async {
		w.Completion = p.complete
	}
	transport, err := newTransport(merged)
	if err != nil {
		return nil, err
	}
	if transport != nil {
		w.Transport = transport
	}
	p.writer = w
	return p, nil
}

// complete 异步批次回调
func (p *Producer) complete(msgs []kafka.Message, err error) {
	if err != nil {
		p.failed.Add(int64(len(msgs)))
		p.logger.Warn("kafka batch failed",
			"topic", p.config.Topic,
			"count", len(msgs),
			"error", err,
		)
		return
	}
	p.succeeded.Add(int64(len(msgs)))
}

// Publish 发送消息，异步模式下只保证进入发送队列
func (p *Producer) Publish(ctx context.Context, msgs ...Message) error {
	if p.closed.Load() {
		return ErrProducerClosed
	}
	if len(msgs) == 0 {
		return nil
	}

	out := make([]kafka.Message, len(msgs))
	for i, m := range msgs {
		out[i] = kafka.Message{Key: m.Key, Value: m.Value, Time: m.Time}
		for k, v := range m.Headers {
			out[i].Headers = append(out[i].Headers, kafka.Header{Key: k, Value: []byte(v)})
		}
	}

	p.produced.Add(int64(len(out)))
	err := p.writer.WriteMessages(ctx, out...)
	if err != nil {
		p.failed.Add(int64(len(out)))
		return errors.Wrapf(err, "kafka: write %d messages to %s", len(out), p.config.Topic)
	}
	if !p.config.Producer.Async {
		p.succeeded.Add(int64(len(out)))
	}
	return nil
}

// Topic 目标 topic
func (p *Producer) Topic() string {
	return p.config.Topic
}

// Stats 发送统计
func (p *Producer) Stats() ProducerStats {
	return ProducerStats{
		Produced:  p.produced.Load(),
		Succeeded: p.succeeded.Load(),
		Failed:    p.failed.Load(),
	}
}

// Close 刷出队列中的消息并关闭
func (p *Producer) Close() error {
	if p.closed.Swap(true) {
		return nil
	}
	return p.writer.Close()
}

func compression(s string) kafka.Compression {
	switch s {
	case "gzip":
		return kafka.Gzip
	case "snappy":
		return kafka.Snappy
	case "lz4":
		return kafka.Lz4
	case "zstd":
		return kafka.Zstd
	default:
		return 0
	}
}
