package engine

import (
	"strings"
	"time"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/rng"
)

// StartRequest 开始制作参数
type StartRequest struct {
	Title        string
	Genre        string
	CharacterIDs []string
}

// StartContent 校验参数、在制任务与角色归属，成功返回 Producing 任务
// producing 为玩家当前在制任务，lookup 规则同 Breakthrough
func StartContent(env *Env, playerID string, req StartRequest, producing *model.ContentJob,
	lookup func(id string) *model.CharacterInstance) (*model.ContentJob, error) {
	t := env.Table

	// 1. 参数
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, gameerr.Validation("title must not be empty")
	}
	genre, ok := model.ParseGenre(req.Genre)
	if !ok {
		return nil, gameerr.Validation("unknown genre %q", req.Genre)
	}
	if n := len(req.CharacterIDs); n == 0 || n > model.MaxContentCharacters {
		return nil, gameerr.Validation("content needs 1 to %d characters, got %d", model.MaxContentCharacters, n)
	}
	seen := make(map[string]struct{}, len(req.CharacterIDs))
	for _, id := range req.CharacterIDs {
		if _, dup := seen[id]; dup {
			return nil, gameerr.Validation("duplicate character %s", id)
		}
		seen[id] = struct{}{}
	}

	// 2. 同时只能有一个在制任务
	if producing != nil {
		return nil, gameerr.StateConflict("content %s is already in production", producing.ID)
	}

	// 3. 角色能力合计
	var scores model.Stats
	for _, id := range req.CharacterIDs {
		inst := lookup(id)
		if inst == nil {
			return nil, gameerr.NotFound("character %s not found", id)
		}
		def, ok := t.Definition(inst.DefinitionID)
		if !ok {
			return nil, gameerr.NotFound("character definition %s not found", inst.DefinitionID)
		}
		scores = scores.Add(ScaledStats(t, def, inst.Level))
	}

	return &model.ContentJob{
		ID:                env.NewID(),
		PlayerID:          playerID,
		Title:             title,
		Genre:             genre,
		CharacterIDs:      append([]string(nil), req.CharacterIDs...),
		Scores:            scores,
		TotalQuality:      scores.Total(),
		ProductionSeconds: t.ProductionSeconds(genre),
		Status:            model.ContentProducing,
		StartedAt:         env.Now,
	}, nil
}

// RemainingSeconds 剩余制作秒数，向上取整，完成后为 0
func RemainingSeconds(job *model.ContentJob, now time.Time) int64 {
	left := time.Duration(job.ProductionSeconds)*time.Second - now.Sub(job.StartedAt)
	if left <= 0 {
		return 0
	}
	return int64((left + time.Second - 1) / time.Second)
}

// CompleteContent Producing -> Completed；未到时长返回 StillInProgress
func CompleteContent(job *model.ContentJob, now time.Time) error {
	if job == nil {
		return gameerr.NotFound("content not found")
	}
	if job.Status != model.ContentProducing {
		return gameerr.StateConflict("content %s is %s, not Producing", job.ID, job.Status)
	}
	if remaining := RemainingSeconds(job, now); remaining > 0 {
		return gameerr.StillInProgress(remaining)
	}
	job.Status = model.ContentCompleted
	job.CompletedAt = &now
	return nil
}

// UploadResult 上传收益
type UploadResult struct {
	Views            int64 `json:"views"`
	Likes            int64 `json:"likes"`
	Revenue          int64 `json:"revenue"`
	NewSubscribers   int64 `json:"newSubscribers"`
	TotalSubscribers int64 `json:"totalSubscribers"`
}

// UploadContent Completed -> Uploaded，随机结算收益并记入账本
func UploadContent(env *Env, p *model.Player, job *model.ContentJob) (*UploadResult, error) {
	if job == nil {
		return nil, gameerr.NotFound("content not found")
	}
	if job.Status != model.ContentCompleted {
		return nil, gameerr.StateConflict("content %s is %s, not Completed", job.ID, job.Status)
	}

	c := env.Table.Content
	views := job.TotalQuality*rng.IntRange(env.Rand, c.ViewsPerQuality.Min, c.ViewsPerQuality.Max) + p.Subscribers/10
	likes := views * rng.IntRange(env.Rand, c.LikesPercent.Min, c.LikesPercent.Max) / 100
	revenue := views / c.ViewsPerGold
	newSubs := views / rng.IntRange(env.Rand, c.SubscriberPerViews.Min, c.SubscriberPerViews.Max)

	ApplyUploadReward(p, views, revenue, newSubs)

	now := env.Now
	job.Status = model.ContentUploaded
	job.UploadedAt = &now
	job.Views, job.Likes, job.Revenue, job.NewSubscribers = views, likes, revenue, newSubs

	return &UploadResult{
		Views:            views,
		Likes:            likes,
		Revenue:          revenue,
		NewSubscribers:   newSubs,
		TotalSubscribers: p.Subscribers,
	}, nil
}

// ProducingView 在制任务展示数据
type ProducingView struct {
	*model.ContentJob
	RemainingSeconds int64 `json:"remainingSeconds"`
}

// DescribeProducing 读取时计算剩余秒数
func DescribeProducing(job *model.ContentJob, now time.Time) *ProducingView {
	if job == nil {
		return nil
	}
	return &ProducingView{ContentJob: job, RemainingSeconds: RemainingSeconds(job, now)}
}
