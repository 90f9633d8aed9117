package repository

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/gameerr"
	"github.com/lk2023060901/creatorsim/app/game/internal/model"
)

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestPlayer(id string) *model.Player {
	return &model.Player{
		ID:          id,
		Name:        "tester",
		ChannelName: "tester channel",
		Gold:        1000,
		Gems:        300,
		Tickets:     10,
		ExpChips:    5,
		StudioLevel: 1,
		CreatedAt:   baseTime,
		UpdatedAt:   baseTime,
	}
}

func createPlayer(t *testing.T, repo Repository, id string) {
	t.Helper()
	err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
		_, err := uow.LoadPlayer(ctx)
		require.ErrorIs(t, err, ErrNotFound)
		return uow.CreatePlayer(ctx, newTestPlayer(id))
	})
	require.NoError(t, err)
}

// runRepositoryTests 对任意实现执行同一组行为测试
func runRepositoryTests(t *testing.T, repo Repository) {
	t.Run("RollbackOnError", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)

		boom := errors.New("boom")
		err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			p, err := uow.LoadPlayer(ctx)
			require.NoError(t, err)
			p.Gold = 1
			require.NoError(t, uow.SavePlayer(ctx, p))
			require.NoError(t, uow.InsertCharacters(ctx, []*model.CharacterInstance{{
				InstanceID: uuid.NewString(), PlayerID: id, DefinitionID: "char_001", Level: 1, AcquiredAt: baseTime,
			}}))
			return boom
		})
		require.ErrorIs(t, err, boom)

		p, err := repo.GetPlayer(t.Context(), id)
		require.NoError(t, err)
		assert.Equal(t, int64(1000), p.Gold)
		list, err := repo.ListCharacters(t.Context(), id)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("CharacterLifecycle", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)
		a, b := uuid.NewString(), uuid.NewString()

		err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			return uow.InsertCharacters(ctx, []*model.CharacterInstance{
				{InstanceID: a, PlayerID: id, DefinitionID: "char_001", Level: 1, AcquiredAt: baseTime},
				{InstanceID: b, PlayerID: id, DefinitionID: "char_001", Level: 1, AcquiredAt: baseTime.Add(time.Second)},
			})
		})
		require.NoError(t, err)

		err = repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			c, err := uow.GetCharacter(ctx, a)
			require.NoError(t, err)
			require.NotNil(t, c)
			c.Level, c.Breakthrough = 5, 1
			if err := uow.UpdateCharacter(ctx, c); err != nil {
				return err
			}
			return uow.DeleteCharacter(ctx, b)
		})
		require.NoError(t, err)

		list, err := repo.ListCharacters(t.Context(), id)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, a, list[0].InstanceID)
		assert.Equal(t, 5, list[0].Level)
		assert.Equal(t, 1, list[0].Breakthrough)

		// 其他玩家看不到
		other := uuid.NewString()
		createPlayer(t, repo, other)
		err = repo.Atomic(t.Context(), other, func(ctx context.Context, uow UnitOfWork) error {
			c, err := uow.GetCharacter(ctx, a)
			require.NoError(t, err)
			assert.Nil(t, c)
			return nil
		})
		require.NoError(t, err)
	})

	t.Run("EquipmentUpsert", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)

		err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			if err := uow.UpsertEquipment(ctx,
				&model.EquipmentSlot{PlayerID: id, Type: model.SlotCamera, Level: 1},
				&model.EquipmentSlot{PlayerID: id, Type: model.SlotPC, Level: 1},
			); err != nil {
				return err
			}
			return uow.UpsertEquipment(ctx, &model.EquipmentSlot{PlayerID: id, Type: model.SlotCamera, Level: 3})
		})
		require.NoError(t, err)

		slots, err := repo.ListEquipment(t.Context(), id)
		require.NoError(t, err)
		levels := map[model.SlotType]int{}
		for _, s := range slots {
			levels[s.Type] = s.Level
		}
		assert.Equal(t, map[model.SlotType]int{model.SlotCamera: 3, model.SlotPC: 1}, levels)
	})

	t.Run("ContentSingleProducing", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)
		job := &model.ContentJob{
			ID: uuid.NewString(), PlayerID: id, Title: "first", Genre: model.GenreVlog,
			CharacterIDs: []string{"x"}, Scores: model.Stats{Filming: 10}, TotalQuality: 10,
			ProductionSeconds: 300, Status: model.ContentProducing, StartedAt: baseTime,
		}

		require.NoError(t, repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			return uow.InsertContent(ctx, job)
		}))

		second := job.Clone()
		second.ID = uuid.NewString()
		err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			return uow.InsertContent(ctx, second)
		})
		assert.True(t, gameerr.Is(err, gameerr.KindStateConflict))

		got, err := repo.FindProducing(t.Context(), id)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, job.ID, got.ID)
		assert.Equal(t, job.Scores, got.Scores)
		assert.Equal(t, []string{"x"}, got.CharacterIDs)
	})

	t.Run("HistoryPaging", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)

		err := repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			for i := range 3 {
				done := baseTime.Add(time.Duration(i) * time.Hour)
				j := &model.ContentJob{
					ID: uuid.NewString(), PlayerID: id, Title: "job", Genre: model.GenreReview,
					CharacterIDs: []string{"x"}, ProductionSeconds: 300, Status: model.ContentUploaded,
					StartedAt: baseTime, CompletedAt: &done, UploadedAt: &done, Views: int64(i),
				}
				if err := uow.InsertContent(ctx, j); err != nil {
					return err
				}
			}
			return nil
		})
		require.NoError(t, err)

		page, err := repo.ListHistory(t.Context(), id, 1, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		require.Len(t, page.Items, 2)
		assert.Equal(t, int64(2), page.Items[0].Views)
		assert.Equal(t, int64(1), page.Items[1].Views)

		page, err = repo.ListHistory(t.Context(), id, 2, 2)
		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, int64(0), page.Items[0].Views)

		page, err = repo.ListHistory(t.Context(), id, 5, 2)
		require.NoError(t, err)
		assert.Empty(t, page.Items)
	})

	t.Run("RankingRowsAndStats", func(t *testing.T) {
		id := uuid.NewString()
		createPlayer(t, repo, id)
		require.NoError(t, repo.Atomic(t.Context(), id, func(ctx context.Context, uow UnitOfWork) error {
			p, err := uow.LoadPlayer(ctx)
			if err != nil {
				return err
			}
			p.Subscribers, p.ChannelPower = 42, 7
			if err := uow.SavePlayer(ctx, p); err != nil {
				return err
			}
			return uow.InsertGachaRecords(ctx, []*model.GachaRecord{{
				ID: uuid.NewString(), PlayerID: id, InstanceID: "i", DefinitionID: "char_001",
				Rarity: model.RarityS, IsNew: true, PaidWith: model.PaidWithTicket, CreatedAt: baseTime,
			}})
		}))

		rows, err := repo.ListRankingRows(t.Context())
		require.NoError(t, err)
		var found *model.RankingRow
		for _, r := range rows {
			if r.PlayerID == id {
				found = r
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, int64(42), found.Subscribers)
		assert.Equal(t, int64(7), found.ChannelPower)

		stats, err := repo.Stats(t.Context())
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.Players, int64(1))

		gacha, err := repo.GachaStats(t.Context())
		require.NoError(t, err)
		var s int64
		for _, c := range gacha {
			if c.Rarity == model.RarityS {
				s = c.Count
			}
		}
		assert.GreaterOrEqual(t, s, int64(1))
	})

	t.Run("UnknownPlayer", func(t *testing.T) {
		_, err := repo.GetPlayer(t.Context(), uuid.NewString())
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
