// Package engine 纯玩法计算：不做 IO，时间、随机源与 id 由调用方注入
package engine

import (
	"time"

	"github.com/lk2023060901/creatorsim/app/game/internal/masterdata"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
)

// Env 一次操作的执行环境
type Env struct {
	Table *masterdata.Table
	Rand  rng.Source
	Now   time.Time
	NewID func() string
}
