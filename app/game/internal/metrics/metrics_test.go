package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*GameMetrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := New(&Config{SystemCollectInterval: time.Hour}, "creatorsim", reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m, reg
}

func TestRecordOperation(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordOperation("gacha.draw", nil, 3*time.Millisecond)
	m.RecordOperation("gacha.draw", nil, time.Millisecond)
	m.RecordRejection("gacha.draw", "InsufficientResource")
	m.RecordOperation("content.start", errors.New("db down"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationTotal.WithLabelValues("gacha.draw", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationTotal.WithLabelValues("content.start", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RejectionTotal.WithLabelValues("gacha.draw", "InsufficientResource")))

	stats := m.GetStats()
	assert.Equal(t, int64(3), stats.Operations.TotalCount)
	assert.Equal(t, int64(1), stats.Operations.FailureCount)
}

func TestEconomyCounters(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordDraw("SSR", "ticket")
	m.RecordDraw("C", "gems")
	m.RecordDraw("C", "gems")
	m.RecordUpload("Gaming", 1200)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.GachaDrawTotal.WithLabelValues("C", "gems")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ContentUploadTotal.WithLabelValues("Gaming")))
	assert.Equal(t, 1200.0, testutil.ToFloat64(m.RewardGoldTotal))
}

func TestRegisterTwiceFails(t *testing.T) {
	_, reg := newTestMetrics(t)
	_, err := New(&Config{SystemCollectInterval: time.Hour}, "creatorsim", reg)
	assert.Error(t, err)
}
