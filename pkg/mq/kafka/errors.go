package kafka

import "github.com/cockroachdb/errors"

var (
	// ErrNoBrokers 无 broker 地址
	ErrNoBrokers = errors.New("kafka: no brokers configured")
	// ErrEmptyTopic 未配置 topic
	ErrEmptyTopic = errors.New("kafka: empty topic")
	// ErrProducerClosed 生产者已关闭
	ErrProducerClosed = errors.New("kafka: producer is closed")
)
