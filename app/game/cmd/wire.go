//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/lk2023060901/creatorsim/app/game/internal/handler"
	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/app"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/security"
)

func InitApp(cfg *Config, l logger.Logger) (app.Application, func(), error) {
	panic(wire.Build(
		// 1. 基础框架 (BaseApp)
		provideLoggerRegistry,
		provideAppOptions,
		app.NewBaseApp,

		// 2. 存储：PostgreSQL / Redis 按配置启用
		providePostgres,
		provideRedis,

		// 3. 指标收集
		providePrometheus,
		provideGameMetrics,

		// 4. 数据层 (DAO / Repository)
		provideCacheDAO,
		provideRepository,

		// 5. 主数据与玩家锁
		provideMasterDataStore,
		providePlayerLocker,
		provideRandFactory,
		provideIDGenerator,

		// 6. 服务层 (Service)，追踪与事件出口按配置启用
		provideTracing,
		provideEventPublisher,
		provideExecutor,
		service.NewPlayerService,
		service.NewGachaService,
		service.NewCharacterService,
		service.NewEquipmentService,
		service.NewContentService,
		provideRankingService,
		service.NewMasterDataService,
		service.NewAdminService,

		// 7. 接口层 (Handler)
		provideSentry,
		handler.NewHandlers,
		provideJWTConfig,
		security.NewJWTManager,
		provideRateLimiter,
		provideWebServer,

		// 8. 定时任务
		provideScheduler,

		// 9. 组装
		provideAppComponents,
		app.InitApp,
	))
}
