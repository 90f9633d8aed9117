package app

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"
)

// 构建信息，发布时注入：
// go build -ldflags "-X 'github.com/lk2023060901/creatorsim/pkg/app.Version=v1.2.0'"
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
	AppName   = "creatorsim-game"
)

var startedAt = time.Now()

// Info 构建与运行信息，健康检查接口直接返回
type Info struct {
	AppName   string `json:"appName"`
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate,omitempty"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	StartedAt string `json:"startedAt"`
	Uptime    int64  `json:"uptimeSeconds"`
}

// GetInfo 当前进程信息，未注入提交号时取 go 工具链记录的 vcs 信息
func GetInfo() Info {
	commit := GitCommit
	if commit == "" {
		commit = vcsRevision()
	}
	return Info{
		AppName:   AppName,
		Version:   Version,
		GitCommit: commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
		StartedAt: startedAt.UTC().Format(time.RFC3339),
		Uptime:    int64(time.Since(startedAt).Seconds()),
	}
}

func vcsRevision() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return "unknown"
}

// String 启动横幅
func (i Info) String() string {
	return fmt.Sprintf("%s %s (commit %s, %s, %s)", i.AppName, i.Version, i.GitCommit, i.GoVersion, i.Platform)
}
