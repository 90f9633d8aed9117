package config

import (
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Manager 进程配置
type Manager interface {
	// LoadFile 读取配置文件，格式由扩展名决定
	LoadFile(path string) error
	// Unmarshal 解析整个配置
	Unmarshal(v any) error
	// UnmarshalKey 解析子树，key 形如 "game.lock"
	UnmarshalKey(key string, v any) error
	GetString(key string) string
	IsSet(key string) bool
	// OnChange 配置文件变化且 key 对应的值确实改变时回调
	// 首次注册时开始监听文件
	OnChange(key string, fn func()) error
}

type subscription struct {
	key  string
	last any
	fn   func()
}

type manager struct {
	v         *viper.Viper
	envPrefix string

	mu       sync.RWMutex
	subs     []*subscription
	watching bool
	settle   *time.Timer
	debounce time.Duration
}

// NewManager 创建配置管理器
func NewManager(opts ...Option) Manager {
	m := &manager{
		v:        viper.New(),
		debounce: 200 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.envPrefix != "" {
		m.v.SetEnvPrefix(m.envPrefix)
		m.v.AutomaticEnv()
		m.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	}
	return m
}

func (m *manager) LoadFile(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return errors.Wrapf(ErrConfigFileNotFound, "path=%s", path)
	}

	m.v.SetConfigFile(path)
	if err := m.v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "failed to read config file %s", path)
	}
	return nil
}

// decodeHook "3s" 转 time.Duration，"a,b" 转切片
func decodeHook() viper.DecoderConfigOption {
	return viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
}

func (m *manager) Unmarshal(v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.Unmarshal(v, decodeHook()); err != nil {
		return errors.Wrap(err, "failed to unmarshal config")
	}
	return nil
}

func (m *manager) UnmarshalKey(key string, v any) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.v.UnmarshalKey(key, v, decodeHook()); err != nil {
		return errors.Wrapf(err, "failed to unmarshal key %s", key)
	}
	return nil
}

func (m *manager) GetString(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.GetString(key)
}

func (m *manager) IsSet(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v.IsSet(key)
}

func (m *manager) OnChange(key string, fn func()) error {
	if fn == nil {
		return errors.New("config: nil change callback")
	}

	m.mu.Lock()
	if m.v.ConfigFileUsed() == "" {
		m.mu.Unlock()
		return errors.Wrap(ErrConfigFileNotFound, "watch requires a loaded config file")
	}
	m.subs = append(m.subs, &subscription{key: key, last: m.v.Get(key), fn: fn})
	start := !m.watching
	m.watching = true
	m.mu.Unlock()

	if start {
		m.v.OnConfigChange(func(fsnotify.Event) { m.schedule() })
		m.v.WatchConfig()
	}
	return nil
}

// schedule 合并短时间内的多次写事件，编辑器截断后再写入会产生一次空文档的重读
func (m *manager) schedule() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settle != nil {
		m.settle.Stop()
	}
	m.settle = time.AfterFunc(m.debounce, m.notify)
}

// notify 比较订阅 key 的当前值，回调在锁外调用
// 重读结果里缺失的 key 视为文件尚未写完，保留旧值
func (m *manager) notify() {
	var fire []func()
	m.mu.Lock()
	for _, sub := range m.subs {
		if !m.v.IsSet(sub.key) {
			continue
		}
		cur := m.v.Get(sub.key)
		if reflect.DeepEqual(cur, sub.last) {
			continue
		}
		sub.last = cur
		fire = append(fire, sub.fn)
	}
	m.mu.Unlock()

	for _, fn := range fire {
		fn()
	}
}
