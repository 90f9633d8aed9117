package repository

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/creatorsim/app/game/internal/dao"
	"github.com/lk2023060901/creatorsim/pkg/database/postgres"
	"github.com/lk2023060901/creatorsim/pkg/logger"
)

// 需要 CREATORSIM_TEST_PG_DSN 指向可写的测试库
func TestPostgresRepository(t *testing.T) {
	dsn := os.Getenv("CREATORSIM_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CREATORSIM_TEST_PG_DSN not set")
	}
	db, err := postgres.New(&postgres.Config{DSN: dsn, ConnectTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(t.Context(), db))

	l := logger.NewNoop()
	repo := NewPostgresRepository(db, DAOs{
		Players:    dao.NewPlayerDAO(l, nil),
		Characters: dao.NewCharacterDAO(l, nil),
		Equipment:  dao.NewEquipmentDAO(l, nil),
		Content:    dao.NewContentDAO(l, nil),
		Gacha:      dao.NewGachaDAO(l, nil),
	}, l)
	runRepositoryTests(t, repo)
}
