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
	"github.com/jhoicas/TiendaOps-api/internal/application/auth"
	"github.com/jhoicas/TiendaOps-api/internal/application/inventory"
	"github.com/jhoicas/TiendaOps-api/internal/application/purchasing"
	"github.com/jhoicas/TiendaOps-api/internal/application/returns"
	"github.com/jhoicas/TiendaOps-api/internal/application/sales"
	"github.com/jhoicas/TiendaOps-api/internal/application/usecase"
	"github.com/jhoicas/TiendaOps-api/internal/domain/repository"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/memory"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/notify"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/postgres"
	"github.com/jhoicas/TiendaOps-api/internal/infrastructure/ratelimit"
	httpRouter "github.com/jhoicas/TiendaOps-api/internal/interfaces/http"
	"github.com/jhoicas/TiendaOps-api/pkg/config"
	"github.com/jhoicas/TiendaOps-api/pkg/logger"
)

// repos agrupa los puertos de persistencia más los runners transaccionales,
// para poder armarlos desde PostgreSQL o desde el store en memoria.
type repos struct {
	products  repository.ProductRepository
	history   repository.StockHistoryRepository
	pos       repository.PurchaseOrderRepository
	returns   repository.ReturnRepository
	sales     repository.SaleRepository
	users     repository.UserRepository
	companies repository.CompanyRepository

	invTx      inventory.TxRunner
	purchaseTx purchasing.TxRunner
	returnTx   returns.TxRunner
	saleTx     sales.TxRunner
}

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
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	var r repos
	switch cfg.DB.Driver {
	case "memory":
		store := memory.NewStore()
		r = repos{
			products:  store.Products(),
			history:   store.History(),
			pos:       store.PurchaseOrders(),
			returns:   store.Returns(),
			sales:     store.Sales(),
			users:     store.Users(),
			companies: store.Companies(),

			invTx:      store,
			purchaseTx: store,
			returnTx:   store,
			saleTx:     store,
		}
		log.Warn().Msg("store en memoria: los datos se pierden al apagar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		txRunner := postgres.NewTxRunner(pool)
		r = repos{
			products:  postgres.NewProductRepository(pool),
			history:   postgres.NewStockHistoryRepository(pool),
			pos:       postgres.NewPurchaseOrderRepository(pool),
			returns:   postgres.NewReturnRepository(pool),
			sales:     postgres.NewSaleRepository(pool),
			users:     postgres.NewUserRepository(pool),
			companies: postgres.NewCompanyRepository(pool),

			invTx:      txRunner,
			purchaseTx: txRunner,
			returnTx:   txRunner,
			saleTx:     txRunner,
		}
	}

	// Redis: bus de eventos de stock + rate limiting. Sin REDIS_ADDR los
	// eventos se descartan y no se limita tráfico.
	var notifier inventory.ChangeNotifier = notify.NopNotifier{}
	var limiter httpRouter.Limiter
	if cfg.Redis.Addr != "" {
		publisher := notify.NewRedisPublisher(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := publisher.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, eventos de stock desactivados")
		} else {
			notifier = publisher
			defer publisher.Close()
			if cfg.RateLimit.Enabled {
				limiter = ratelimit.NewRedisLimiter(
					publisher.Client(),
					cfg.RateLimit.PerMinute,
					time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
				)
			}
		}
	}

	mutator := inventory.NewMutator(
		r.invTx, notifier, log,
		cfg.Inventory.MaxRetries,
		time.Duration(cfg.Inventory.TimeoutSeconds)*time.Second,
	)

	adjustUC := inventory.NewAdjustStockUseCase(mutator)
	historyUC := inventory.NewStockHistoryUseCase(r.products, r.history)
	lowStockUC := inventory.NewLowStockUseCase(r.products)
	purchaseUC := purchasing.NewUseCase(r.purchaseTx, r.pos, r.products, mutator, log, cfg.Inventory.MaxRetries)
	returnUC := returns.NewUseCase(r.returnTx, r.returns, r.products, mutator, log, cfg.Inventory.MaxRetries)
	saleUC := sales.NewUseCase(r.saleTx, r.sales, mutator, log, cfg.Inventory.MaxRetries)
	productUC := usecase.NewProductUseCase(r.products, mutator, log)
	userUC := usecase.NewUserUseCase(r.users)
	authUC := auth.NewAuthUseCase(r.users, r.companies, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "TiendaOps API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:      authUC,
		UserUC:      userUC,
		ProductUC:   productUC,
		AdjustUC:    adjustUC,
		HistoryUC:   historyUC,
		LowStockUC:  lowStockUC,
		PurchaseUC:  purchaseUC,
		ReturnUC:    returnUC,
		SaleUC:      saleUC,
		JWTSecret:   cfg.JWT.Secret,
		RateLimiter: limiter,
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

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
