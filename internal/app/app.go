package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/episode_shop_bot/internal/config"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/callbacks/callbacktypes"
	"github.com/Freeeeeet/episode_shop_bot/internal/controller/state"
	"github.com/Freeeeeet/episode_shop_bot/internal/delivery"
	"github.com/Freeeeeet/episode_shop_bot/internal/repository"
	"github.com/Freeeeeet/episode_shop_bot/internal/service"
	"github.com/Freeeeeet/episode_shop_bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Services доменные сервисы поверх PostgreSQL
type Services struct {
	Users     *service.UserService
	Catalog   *service.CatalogService
	Purchases *service.PurchaseService
	Tokens    *service.TokenService
}

// NewServices создаёт репозитории и сервисы на общем пуле
func NewServices(pool *pgxpool.Pool, cfg *config.Config, logger *zap.Logger) *Services {
	admin := service.AdminID(cfg.AdminID)

	users := repository.NewUserRepository(pool)
	courses := repository.NewCourseRepository(pool)
	episodes := repository.NewEpisodeRepository(pool)
	purchases := repository.NewPurchaseRepository(pool)
	tokens := repository.NewTokenRepository(pool)
	stats := repository.NewStatsRepository(pool)

	purchaseService := service.NewPurchaseService(purchases, episodes, admin, logger)

	return &Services{
		Users:     service.NewUserService(users, admin, logger),
		Catalog:   service.NewCatalogService(courses, episodes, stats, admin, logger),
		Purchases: purchaseService,
		Tokens:    service.NewTokenService(tokens, episodes, purchaseService, cfg.TokenTTL, logger),
	}
}

// OpenDatabase подключается к PostgreSQL и применяет миграции
func OpenDatabase(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	migrator, err := NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	defer migrator.Close()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("✅ Connected to database")
	return pool, nil
}

// newSessionStore Redis, если задан REDIS_ADDR, иначе память процесса.
// Возвращает функцию закрытия клиента
func newSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (state.Store, func(), error) {
	if cfg.RedisAddr == "" {
		logger.Info("Using in-memory session store")
		return state.NewMemoryStore(cfg.SessionTTL), func() {}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("Using Redis session store", zap.String("addr", cfg.RedisAddr))
	return state.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }, nil
}

// Run запускает бота, HTTP сервер просмотра и фоновые задачи.
// Возвращается после отмены контекста или при ошибке любой из частей
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if err := cfg.RequireBot(); err != nil {
		return err
	}

	pool, err := OpenDatabase(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := NewServices(pool, cfg, logger)

	store, closeStore, err := newSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	deps := &callbacktypes.Handler{
		UserService:     svc.Users,
		CatalogService:  svc.Catalog,
		PurchaseService: svc.Purchases,
		TokenService:    svc.Tokens,
		Sessions:        state.NewManager(store, logger),
		Logger:          logger,
		AdminID:         cfg.AdminID,
		WebAppURL:       cfg.WebAppURL,
	}

	botController, err := controller.NewBotController(cfg.TelegramToken, deps)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	if err := botController.RegisterHandlers(ctx); err != nil {
		// Без меню команд бот продолжает работать
		logger.Warn("Failed to register bot commands", zap.Error(err))
	}

	server := delivery.NewServer(
		delivery.Config{
			Addr:       cfg.HTTPAddr,
			MobileOnly: cfg.DeliveryMobileOnly,
			Production: cfg.IsProduction(),
		},
		svc.Tokens,
		logger,
		delivery.NewLocalSource(cfg.VideosDir),
		delivery.NewTelegramSource(botController.Bot(), nil),
	)

	scheduler := NewScheduler(svc.Tokens, cfg.TokenPurgeInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return botController.Start(gctx) })
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })

	logger.Info("🚀 Episode shop bot started",
		zap.String("env", cfg.Environment),
		zap.String("http_addr", cfg.HTTPAddr),
		zap.Int64("admin_id", cfg.AdminID))

	return g.Wait()
}
