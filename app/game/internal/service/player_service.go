package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cockroachdb/errors"

	"github.com/lk2023060901/creatorsim/app/game/internal/engine"
	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/metrics"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/app/game/internal/repository"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// maxNameLength 昵称与频道名的最大字符数
const maxNameLength = 32

// PlayerService 玩家档案与角色列表
type PlayerService struct {
	exec    *Executor
	repo    repository.Repository
	metrics *metrics.GameMetrics
	logger  logger.Logger
}

// NewPlayerService 创建玩家服务
func NewPlayerService(exec *Executor, repo repository.Repository, m *metrics.GameMetrics, l logger.Logger) *PlayerService {
	return &PlayerService{
		exec:    exec,
		repo:    repo,
		metrics: m,
		logger:  l.Named("service.player"),
	}
}

// Profile 玩家档案，首次访问时创建
func (s *PlayerService) Profile(ctx context.Context, playerID string) (*model.Player, error) {
	// 已存在的玩家走只读路径
	p, err := s.repo.GetPlayer(ctx, playerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	err = s.exec.Run(ctx, "player.profile", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err = ensurePlayer(ctx, uow, env, playerID, s.metrics)
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProfileRequest 修改昵称与频道名
type UpdateProfileRequest struct {
	Name        string `json:"name"`
	ChannelName string `json:"channelName"`
}

func validName(field, v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", gameerr.Validation("%s must not be empty", field)
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return "", gameerr.Validation("%s must be at most %d characters", field, maxNameLength)
	}
	return v, nil
}

// UpdateProfile 修改昵称与频道名，空字段保持不变
func (s *PlayerService) UpdateProfile(ctx context.Context, playerID string, req UpdateProfileRequest) (*model.Player, error) {
	if req.Name == "" && req.ChannelName == "" {
		return nil, gameerr.Validation("name or channelName is required")
	}

	var out *model.Player
	err := s.exec.Run(ctx, "player.update_profile", playerID, func(ctx context.Context, uow repository.UnitOfWork, env *engine.Env) error {
		p, err := ensurePlayer(ctx, uow, env, playerID, s.metrics)
		if err != nil {
			return err
		}
		if req.Name != "" {
			if p.Name, err = validName("name", req.Name); err != nil {
				return err
			}
		}
		if req.ChannelName != "" {
			if p.ChannelName, err = validName("channelName", req.ChannelName); err != nil {
				return err
			}
		}
		if err := savePlayer(ctx, uow, env, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Characters 持有的角色实例
func (s *PlayerService) Characters(ctx context.Context, playerID string) ([]engine.CharacterView, error) {
	list, err := s.repo.ListCharacters(ctx, playerID)
	if err != nil {
		return nil, err
	}

	t := s.exec.Table()
	views := make([]engine.CharacterView, 0, len(list))
	for _, inst := range list {
		v, ok := engine.DescribeCharacter(t, inst)
		if !ok {
			s.logger.WarnContext(ctx, "character definition missing",
				"instance_id", inst.InstanceID,
				"definition_id", inst.DefinitionID,
			)
			continue
		}
		views = append(views, v)
	}
	return views, nil
}

// Catalog 全部角色定义
func (s *PlayerService) Catalog() []*model.CharacterDefinition {
	return s.exec.Table().Characters
}
