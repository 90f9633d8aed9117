package idgen

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/sony/sonyflake"
)

// Config ID 生成器配置
type Config struct {
	// MachineID 多实例部署时必须互不相同 (0-65535)
	MachineID uint16 `mapstructure:"machine_id" json:"machine_id"`
}

type sonyflakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// epoch ID 时间基准
var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// NewSonyflake 创建基于 Sonyflake 的 ID 生成器
func NewSonyflake(cfg Config) (Generator, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: epoch,
		MachineID: func() (uint16, error) { return cfg.MachineID, nil },
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create sonyflake generator")
	}
	return &sonyflakeGenerator{sf: sf}, nil
}

func (g *sonyflakeGenerator) NextID() (int64, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return 0, errors.Wrap(err, "failed to generate id")
	}
	return int64(id), nil
}
