package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Stats 进程资源快照
type Stats struct {
	CPUPercent    float64   `json:"cpuPercent"`
	MemoryPercent float64   `json:"memoryPercent"`
	MemoryBytes   uint64    `json:"memoryBytes"`
	Goroutines    int       `json:"goroutines"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Collector 周期采集本进程 CPU、内存、协程数
type Collector struct {
	proc *process.Process
	pool *ants.Pool

	mu      sync.RWMutex
	stats   Stats
	stopCh  chan struct{}
	running bool
}

// New 创建采集器
func New() (*Collector, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, errors.Wrap(err, "open process")
	}
	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, errors.Wrap(err, "create pool")
	}
	return &Collector{proc: proc, pool: pool}, nil
}

// Start 立即采集一次并按 interval 周期采集
func (c *Collector) Start(interval time.Duration) error {
	if interval <= 0 {
		interval = 5 * time.Second
	}

	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = true
	c.stopCh = make(chan struct{})
	stopCh := c.stopCh
	c.mu.Unlock()

	c.collect()
	return c.pool.Submit(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-stopCh:
				return
			}
		}
	})
}

// Stop 停止采集
func (c *Collector) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

// Close 停止采集并释放协程池
func (c *Collector) Close() error {
	c.Stop()
	c.pool.Release()
	return nil
}

func (c *Collector) collect() {
	stats := Stats{
		Goroutines: runtime.NumGoroutine(),
		UpdatedAt:  time.Now(),
	}
	if pct, err := c.proc.CPUPercent(); err == nil {
		stats.CPUPercent = pct
	}
	if info, err := c.proc.MemoryInfo(); err == nil {
		stats.MemoryBytes = info.RSS
		if vm, err := mem.VirtualMemory(); err == nil && vm.Total > 0 {
			stats.MemoryPercent = float64(info.RSS) / float64(vm.Total) * 100
		}
	}

	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
}

// GetStats 最近一次快照
func (c *Collector) GetStats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}
