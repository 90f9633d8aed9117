package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/model"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

func TestMemoryRepository(t *testing.T) {
	runRepositoryTests(t, NewMemoryRepository(logger.NewNoop()))
}

func TestMemoryRepositoryIsolation(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	createPlayer(t, repo, "p1")

	// 读出的对象是副本，修改不影响仓储
	p, err := repo.GetPlayer(t.Context(), "p1")
	require.NoError(t, err)
	p.Gold = 0

	again, err := repo.GetPlayer(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), again.Gold)
}

func TestMemoryRepositoryNoPlayerNoPartition(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())

	// 未创建玩家的工作单元不会留下数据
	err := repo.Atomic(t.Context(), "ghost", func(ctx context.Context, uow UnitOfWork) error {
		return uow.UpsertEquipment(ctx, &model.EquipmentSlot{PlayerID: "ghost", Type: model.SlotPC, Level: 1})
	})
	require.NoError(t, err)

	slots, err := repo.ListEquipment(t.Context(), "ghost")
	require.NoError(t, err)
	assert.Empty(t, slots)

	stats, err := repo.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.Players)
}

func TestMemoryRepositoryPlayersDoNotBlockEachOther(t *testing.T) {
	repo := NewMemoryRepository(logger.NewNoop())
	createPlayer(t, repo, "p1")
	createPlayer(t, repo, "p2")

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- repo.Atomic(t.Context(), "p1", func(ctx context.Context, uow UnitOfWork) error {
			close(entered)
			<-release
			p, err := uow.LoadPlayer(ctx)
			if err != nil {
				return err
			}
			p.Gold = 1
			return uow.SavePlayer(ctx, p)
		})
	}()
	<-entered

	// p1 的工作单元未结束时，p2 可以提交，读接口也不阻塞
	p2Done := make(chan error, 1)
	go func() {
		p2Done <- repo.Atomic(t.Context(), "p2", func(ctx context.Context, uow UnitOfWork) error {
			p, err := uow.LoadPlayer(ctx)
			if err != nil {
				return err
			}
			p.Gold = 2
			return uow.SavePlayer(ctx, p)
		})
	}()
	select {
	case err := <-p2Done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		close(release)
		t.Fatal("p2 blocked by p1's unit of work")
	}

	p1, err := repo.GetPlayer(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), p1.Gold)

	// 同一玩家仍然串行
	sameDone := make(chan error, 1)
	go func() {
		sameDone <- repo.Atomic(t.Context(), "p1", func(context.Context, UnitOfWork) error { return nil })
	}()
	select {
	case <-sameDone:
		t.Fatal("second p1 unit of work ran concurrently")
	case <-time.After(100 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, <-sameDone)

	p1, err = repo.GetPlayer(t.Context(), "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p1.Gold)
	p2, err := repo.GetPlayer(t.Context(), "p2")
	require.NoError(t, err)
	assert.Equal(t, int64(2), p2.Gold)
}
