package event

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/mq/kafka"
	"github.com/lk2023060901/creatorsim/pkg/serializer"
)

// KafkaPublisher 事件写入 kafka，玩家 id 作为消息 key 保证单玩家有序
type KafkaPublisher struct {
	producer   *kafka.Producer
	serializer serializer.Serializer
}

// NewKafkaPublisher 创建 kafka 发布器
func NewKafkaPublisher(p *kafka.Producer, s serializer.Serializer) *KafkaPublisher {
	return &KafkaPublisher{producer: p, serializer: s}
}

func (k *KafkaPublisher) Publish(ctx context.Context, events ...Event) error {
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		body, err := k.serializer.Serialize(e)
		if err != nil {
			return errors.Wrapf(err, "encode event %s", e.Type)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(e.PlayerID),
			Value: body,
			Headers: map[string]string{
				"event-type": string(e.Type),
				"format":     string(k.serializer.Format()),
			},
			Time: e.OccurredAt,
		})
	}
	return k.producer.Publish(ctx, msgs...)
}
