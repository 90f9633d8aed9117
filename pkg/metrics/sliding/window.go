package sliding

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/config"
)

// WindowConfig 滑动窗口配置
type WindowConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// WindowSize 统计窗口长度
	WindowSize time.Duration `mapstructure:"window_size"`
	// BucketCount 窗口切分的桶数
	BucketCount int `mapstructure:"bucket_count"`
}

// DefaultWindowConfig 默认 60 秒、60 个桶
func DefaultWindowConfig() *WindowConfig {
	return &WindowConfig{
		Enabled:     true,
		WindowSize:  60 * time.Second,
		BucketCount: 60,
	}
}

// bucket 按时间片编号懒复位，不需要后台轮转
type bucket struct {
	slot     int64
	count    int64
	failures int64
	total    time.Duration
	min      time.Duration
	max      time.Duration
}

// Window 最近 WindowSize 内的请求数、延迟与成功率
type Window struct {
	cfg     WindowConfig
	width   time.Duration
	now     func() time.Time
	mu      sync.Mutex
	buckets []bucket
}

// Option 窗口选项
type Option func(*Window)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(w *Window) { w.now = now }
}

// NewWindow 创建滑动窗口
func NewWindow(cfg *WindowConfig, opts ...Option) (*Window, error) {
	merged, err := config.MergeConfig(DefaultWindowConfig(), cfg)
	if err != nil {
		return nil, err
	}
	if merged.BucketCount < 1 || merged.WindowSize < time.Duration(merged.BucketCount) {
		return nil, errors.Newf("invalid sliding window: size=%s buckets=%d", merged.WindowSize, merged.BucketCount)
	}

	w := &Window{
		cfg:     *merged,
		width:   merged.WindowSize / time.Duration(merged.BucketCount),
		now:     time.Now,
		buckets: make([]bucket, merged.BucketCount),
	}
	for _, opt := range opts {
		opt(w)
	}
	for i := range w.buckets {
		w.buckets[i].slot = -1
	}
	return w, nil
}

func (w *Window) slot() int64 {
	return w.now().UnixNano() / int64(w.width)
}

// Record 记录一次请求
func (w *Window) Record(latency time.Duration, success bool) {
	if !w.cfg.Enabled {
		return
	}
	s := w.slot()

	w.mu.Lock()
	defer w.mu.Unlock()

	b := &w.buckets[s%int64(len(w.buckets))]
	if b.slot != s {
		*b = bucket{slot: s, min: latency}
	}
	b.count++
	b.total += latency
	if !success {
		b.failures++
	}
	if latency < b.min {
		b.min = latency
	}
	if latency > b.max {
		b.max = latency
	}
}

// Stats 窗口统计
type Stats struct {
	QPS          float64       `json:"qps"`
	AvgLatency   time.Duration `json:"avgLatency"`
	MinLatency   time.Duration `json:"minLatency"`
	MaxLatency   time.Duration `json:"maxLatency"`
	SuccessRate  float64       `json:"successRate"`
	TotalCount   int64         `json:"totalCount"`
	FailureCount int64         `json:"failureCount"`
}

// Snapshot 汇总仍在窗口内的桶
func (w *Window) Snapshot() Stats {
	cur := w.slot()
	oldest := cur - int64(len(w.buckets)) + 1

	w.mu.Lock()
	defer w.mu.Unlock()

	var st Stats
	var total time.Duration
	first := true
	for _, b := range w.buckets {
		if b.slot < oldest || b.slot > cur || b.count == 0 {
			continue
		}
		st.TotalCount += b.count
		st.FailureCount += b.failures
		total += b.total
		if first || b.min < st.MinLatency {
			st.MinLatency = b.min
		}
		if b.max > st.MaxLatency {
			st.MaxLatency = b.max
		}
		first = false
	}

	st.QPS = float64(st.TotalCount) / w.cfg.WindowSize.Seconds()
	if st.TotalCount > 0 {
		st.AvgLatency = total / time.Duration(st.TotalCount)
		st.SuccessRate = float64(st.TotalCount-st.FailureCount) / float64(st.TotalCount) * 100
	}
	return st
}
