package masterdata

import (
	"context"
	"embed"
	"io/fs"
	"sync"
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/pkg/gameconfig"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

//go:embed defaults/*.json
var embedded embed.FS

// Defaults 内置默认表
func Defaults() fs.FS {
	sub, _ := fs.Sub(embedded, "defaults")
	return sub
}

// Config 配置表加载配置
type Config struct {
	// DataDir 覆盖内置默认值的 JSON 目录，为空只用内置表
	DataDir string `mapstructure:"data_dir"`
	// Version 非 0 时覆盖 version.json
	Version int `mapstructure:"version"`
	// HotReload 监听 DataDir 变更并原子替换
	HotReload bool `mapstructure:"hot_reload"`
}

// Store 持有当前生效的配置表，读无锁
type Store struct {
	cfg     Config
	source  *gameconfig.Source
	current atomic.Pointer[Table]
	logger  logger.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
	onSwap []func(*Table)
}

// NewStore 加载配置表，校验失败返回错误
func NewStore(cfg *Config, l logger.Logger) (*Store, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	s := &Store{
		cfg:    *cfg,
		source: gameconfig.NewSource(cfg.DataDir, Defaults(), l),
		logger: l.Named("masterdata"),
	}
	t, err := s.load()
	if err != nil {
		return nil, err
	}
	s.current.Store(t)
	s.logger.Info("master data loaded", "version", t.Version, "characters", len(t.Characters), "dir", cfg.DataDir)
	return s, nil
}

// NewStatic 使用给定表，测试与工具使用
func NewStatic(t *Table) *Store {
	t.buildIndex()
	s := &Store{logger: logger.NewNoop()}
	s.current.Store(t)
	return s
}

// LoadDefault 只读取内置默认表
func LoadDefault() (*Table, error) {
	l := logger.NewNoop()
	s := &Store{source: gameconfig.NewSource("", Defaults(), l), logger: l}
	return s.load()
}

// Current 当前生效的表，调用方在一次操作内应只取一次
func (s *Store) Current() *Table {
	return s.current.Load()
}

// OnSwap 注册热更新成功后的回调
func (s *Store) OnSwap(fn func(*Table)) {
	s.onSwap = append(s.onSwap, fn)
}

func (s *Store) load() (*Table, error) {
	t := &Table{}
	var version struct {
		Version int `json:"version"`
	}

	// 1. 逐表读取，文件优先，内置兜底
	tables := []struct {
		name string
		dst  any
	}{
		{"version", &version},
		{"gacha", &t.Gacha},
		{"character", &t.Character},
		{"content", &t.Content},
		{"equipment", &t.Equipment},
		{"player_start", &t.PlayerStart},
		{"milestones", &t.Milestones},
		{"characters", &t.Characters},
	}
	for _, tb := range tables {
		origin, err := s.source.Load(tb.name, tb.dst)
		if err != nil {
			return nil, errors.Wrapf(err, "load table %s", tb.name)
		}
		if origin == gameconfig.OriginEmbedded && s.cfg.DataDir != "" {
			s.logger.Warn("table missing in data dir, using built-in default", "table", tb.name)
		}
	}

	// 2. 版本号
	t.Version = version.Version
	if s.cfg.Version != 0 {
		t.Version = s.cfg.Version
	}

	// 3. 校验并建立索引
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.buildIndex()
	return t, nil
}

// Reload 重新加载，校验失败时保留旧表
func (s *Store) Reload() error {
	if s.source == nil {
		return errors.New("static master data cannot be reloaded")
	}
	t, err := s.load()
	if err != nil {
		s.logger.Error("master data reload rejected", "error", err)
		return err
	}
	old := s.current.Swap(t)
	s.logger.Info("master data reloaded", "old_version", old.Version, "new_version", t.Version)
	for _, fn := range s.onSwap {
		fn(t)
	}
	return nil
}

// Start 开启热更新监听（非阻塞）
func (s *Store) Start() error {
	if !s.cfg.HotReload || s.cfg.DataDir == "" {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		err := s.source.Watch(ctx, func(tables []string) {
			s.logger.Info("master data files changed", "tables", tables)
			_ = s.Reload()
		})
		if err != nil {
			s.logger.Error("master data watcher stopped", "error", err)
		}
	}()
	return nil
}

// Stop 停止监听
func (s *Store) Stop(ctx context.Context) error {
	if s.cancel == nil {
		return nil
	}
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
