package config

// Option Manager 选项
type Option func(*manager)

// WithDefaults 最低优先级的默认值，key 使用点号路径
func WithDefaults(defaults map[string]any) Option {
	return func(m *manager) {
		for key, value := range defaults {
			m.v.SetDefault(key, value)
		}
	}
}

// WithEnvPrefix 环境变量覆盖，前缀 CREATORSIM 时 CREATORSIM_GAME_RNG_SEED 对应 game.rng_seed
func WithEnvPrefix(prefix string) Option {
	return func(m *manager) {
		m.envPrefix = prefix
	}
}
