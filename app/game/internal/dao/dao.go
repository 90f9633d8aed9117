package dao

import (
	"time"

	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
)

// 表名
const (
	tablePlayers      = "players"
	tableCharacters   = "character_instances"
	tableEquipment    = "equipment_slots"
	tableContent      = "content_jobs"
	tableGachaRecords = "gacha_records"
)

// observer 查询耗时与结果上报，metrics 为空时不上报
type observer struct {
	metrics *metrics.GameMetrics
}

func (o observer) observe(op string, start time.Time, err error) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordDBQuery(op, err, time.Since(start))
}
