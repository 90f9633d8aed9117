package app

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/spf13/pflag"

	"github.com/lk2023060901/creatorsim/pkg/config"
)

// EnvPrefix 环境变量前缀，CREATORSIM_LOG_LEVEL 对应 log.level
const EnvPrefix = "CREATORSIM"

var (
	configPath string
	logPath    string
)

// LoadConfig 统一加载进程配置，返回的 Manager 可继续监听文件变化
// 优先级：命令行显式参数 > 环境变量 > 配置文件 > 默认值
func LoadConfig(target any, opts ...config.Option) (config.Manager, error) {
	// 1. 以可执行文件目录计算默认路径
	execDir, err := GetExecDir()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get executable directory")
	}
	defaultConfig := filepath.Join(execDir, "config.yaml")
	defaultLog := filepath.Join(execDir, "logs", "app.log")

	// 2. 注册并解析命令行参数
	if pflag.Lookup("config") == nil {
		pflag.StringVarP(&configPath, "config", "c", defaultConfig, "path to config file")
	}
	if pflag.Lookup("log.path") == nil {
		pflag.StringVar(&logPath, "log.path", defaultLog, "output path for logs")
	}
	if !pflag.Parsed() {
		pflag.Parse()
	}

	// 3. 配置文件路径：Flag > CREATORSIM_CONFIG > 默认路径
	if !pflag.CommandLine.Changed("config") {
		if envConfig := os.Getenv(EnvPrefix + "_CONFIG"); envConfig != "" {
			configPath = envConfig
		}
	}

	// 4. 默认值与 Flag 覆盖
	defaults := map[string]any{
		"log.output_path": defaultLog,
	}
	if pflag.CommandLine.Changed("log.path") {
		defaults["log.output_path"] = logPath
		defaults["log.enable_file"] = true
	}

	mgr := config.NewManager(append([]config.Option{
		config.WithEnvPrefix(EnvPrefix),
		config.WithDefaults(defaults),
	}, opts...)...)

	// 5. 加载并解析
	if err := mgr.LoadFile(configPath); err != nil {
		return nil, err
	}
	if err := mgr.Unmarshal(target); err != nil {
		return nil, err
	}

	// 6. 确保日志目录存在
	logPath = mgr.GetString("log.output_path")
	if logPath != "" {
		_ = os.MkdirAll(filepath.Dir(logPath), 0o755)
	}
	return mgr, nil
}

// GetExecDir 获取可执行文件所在目录（解析符号链接）
func GetExecDir() (string, error) {
	execPath, err := os.Executable()
	if err != nil {
		return "", err
	}
	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		return filepath.Dir(execPath), nil
	}
	return filepath.Dir(realPath), nil
}

// GetConfigPath 返回最终使用的配置文件路径
func GetConfigPath() string {
	return configPath
}
