package event

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/mq/kafka"
	"github.com/lk2023060901/creatorsim/pkg/serializer"
)

func TestKafkaPublisher(t *testing.T) {
	brokers := os.Getenv("CREATORSIM_TEST_KAFKA_BROKERS")
	if brokers == "" {
		t.Skip("CREATORSIM_TEST_KAFKA_BROKERS not set")
	}

	p, err := kafka.NewProducer(&kafka.Config{
		Brokers: strings.Split(brokers, ","),
		Topic:   "creatorsim-events-test",
	}, logger.NewNoop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	s, err := serializer.New(serializer.FormatJSON)
	require.NoError(t, err)
	pub := NewKafkaPublisher(p, s)

	err = pub.Publish(t.Context(), Event{
		ID:         "e1",
		Type:       TypeContentUploaded,
		PlayerID:   "p1",
		OccurredAt: time.Now().UTC(),
		Data:       map[string]any{"views": 1200},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Stats().Succeeded)
}
