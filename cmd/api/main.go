package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/adega-api/internal/application/inventory"
	"github.com/jhoicas/adega-api/internal/application/sales"
	"github.com/jhoicas/adega-api/internal/application/usecase"
	"github.com/jhoicas/adega-api/internal/infrastructure/postgres"
	"github.com/jhoicas/adega-api/internal/infrastructure/redisx"
	httpRouter "github.com/jhoicas/adega-api/internal/interfaces/http"
	"github.com/jhoicas/adega-api/pkg/config"
	"github.com/jhoicas/adega-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	productRepo := postgres.NewProductRepository(pool)
	stockRepo := postgres.NewStockRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	transferRepo := postgres.NewTransferRepository(pool)
	saleRepo := postgres.NewSaleRepository(pool)
	customerRepo := postgres.NewCustomerRepository(pool)
	auditRepo := postgres.NewAuditRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	// Redis es opcional: sin él no hay caché de stock ni cola de replay y la
	// API opera solo contra PostgreSQL.
	var (
		stockCache inventory.StockCache
		queue      inventory.ReplayQueue
		retryQueue *redisx.RetryQueue
	)
	if cfg.Redis.Enabled() {
		redisClient, err := redisx.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		stockCache = redisx.NewStockCache(redisClient, cfg.Redis.CacheTTL)
		retryQueue = redisx.NewRetryQueue(redisClient, cfg.Queue, nil)
		queue = retryQueue
		defer retryQueue.Close()
	}

	movementUC := inventory.NewRegisterMovementUseCase(txRunner, productRepo, movementRepo, stockCache)
	stockQueryUC := inventory.NewStockQueryUseCase(stockRepo, transferRepo, stockCache)
	transferUC := inventory.NewTransferUseCase(txRunner, productRepo, transferRepo, auditRepo, stockCache)
	checkoutUC := sales.NewCheckoutUseCase(txRunner, productRepo, customerRepo, movementUC, auditRepo, customerRepo)
	productUC := usecase.NewProductUseCase(productRepo, stockRepo)
	lifecycleUC := usecase.NewLifecycleUseCase(productRepo, stockRepo, saleRepo, movementRepo)

	// Drenaje periódico de la cola de replay: reaplica en orden FIFO las
	// operaciones encoladas por fallos transitorios.
	if retryQueue != nil {
		applier := inventory.NewReplayApplier(movementUC)
		go func() {
			ticker := time.NewTicker(15 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := retryQueue.Replay(ctx, applier); err != nil {
						log.Warn().Err(err).Msg("replay de operaciones encoladas")
					}
				}
			}
		}()
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Adega API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:   productUC,
		LifecycleUC: lifecycleUC,
		MovementUC:  movementUC,
		StockQuery:  stockQueryUC,
		TransferUC:  transferUC,
		CheckoutUC:  checkoutUC,
		Queue:       queue,
		JWTSecret:   cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
