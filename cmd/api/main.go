package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/audit"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/inventory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/ports"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/query"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/report"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/sales"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/application/usecase"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/domain/repository"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/infrastructure/memory"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/internal/infrastructure/postgres"
	httpRouter "github.com/Jair-Kell-Of-Monkeys/pos-system/internal/interfaces/http"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/pkg/config"
	"github.com/Jair-Kell-Of-Monkeys/pos-system/pkg/logger"
)

// ledger almacén elegido por configuración.
type ledger struct {
	txRunner  ports.TxRunner
	repos     ports.Repos
	analytics repository.AnalyticsRepository
	close     func()
}

func openLedger(ctx context.Context, cfg *config.Config) (*ledger, error) {
	if cfg.Store.Driver == config.DriverMemory {
		store := memory.NewStore(memory.WithLockTimeout(cfg.Engine.LockTimeout))
		return &ledger{
			txRunner:  memory.NewTxRunner(store),
			repos:     store.Repos(),
			analytics: store.Analytics(),
			close:     func() {},
		}, nil
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &ledger{
		txRunner:  postgres.NewTxRunner(pool, cfg.Engine.LockTimeout),
		repos:     postgres.NewRepos(pool),
		analytics: postgres.NewAnalyticsRepository(pool),
		close:     pool.Close,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	store, err := openLedger(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión al almacén")
	}
	defer store.close()

	clock := ports.SystemClock{}
	retry := inventory.RetryPolicy{
		MaxAttempts: cfg.Engine.MaxAttempts,
		BaseBackoff: cfg.Engine.RetryBackoff,
		MaxBackoff:  cfg.Engine.MaxBackoff,
	}
	recorder := audit.NewRecorder(clock, log.Component("audit"))
	guard := inventory.NewStockGuard(log.Component("stock"))

	createSaleUC := sales.NewCreateSaleUseCase(store.txRunner, guard, recorder, clock, retry, log.Component("sales"))
	cancelSaleUC := sales.NewCancelSaleUseCase(store.txRunner, guard, recorder, clock, retry, log.Component("sales"))
	registerMovementUC := inventory.NewRegisterMovementUseCase(store.txRunner, guard, recorder, clock, retry, log.Component("inventory"))
	productUC := usecase.NewProductUseCase(store.txRunner, store.repos, recorder, clock, log.Component("products"))
	userUC := usecase.NewUserUseCase(store.txRunner, store.repos, recorder, clock, log.Component("users"))
	generator := report.NewGenerator(store.txRunner, store.repos, store.analytics, recorder, clock,
		cfg.Report.LowStockThreshold, log.Component("reports"))
	queries := query.NewService(store.repos)

	var scheduler *report.Scheduler
	if cfg.Report.Cron != "" {
		scheduler, err = report.NewScheduler(generator, clock, cfg.Report.Cron, cfg.Report.SystemUserID, log.Component("scheduler"))
		if err != nil {
			log.Fatal().Err(err).Msg("programar reporte diario")
		}
		scheduler.Start()
	}

	app := fiber.New(httpRouter.AppConfig(cfg.App.Name))
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.HTTP.SwaggerFile != "" {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.HTTP.SwaggerFile,
			Path:     "docs",
			Title:    cfg.App.Name,
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		CreateSale:       createSaleUC,
		CancelSale:       cancelSaleUC,
		RegisterMovement: registerMovementUC,
		ProductUC:        productUC,
		UserUC:           userUC,
		Reports:          generator,
		Query:            queries,
		Clock:            clock,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
