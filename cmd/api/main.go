package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stockmaster-api/internal/application/inventory"
	"github.com/jhoicas/stockmaster-api/internal/application/purchasing"
	"github.com/jhoicas/stockmaster-api/internal/application/sales"
	"github.com/jhoicas/stockmaster-api/internal/application/usecase"
	"github.com/jhoicas/stockmaster-api/internal/domain/repository"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/mail"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/stockmaster-api/internal/infrastructure/pdf"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/postgres"
	"github.com/jhoicas/stockmaster-api/internal/infrastructure/queue"
	httpRouter "github.com/jhoicas/stockmaster-api/internal/interfaces/http"
	"github.com/jhoicas/stockmaster-api/internal/observability"
	"github.com/jhoicas/stockmaster-api/pkg/config"
	"github.com/jhoicas/stockmaster-api/pkg/logger"
)

// backend agrupa los repositorios del driver elegido.
type backend struct {
	runner    inventory.TxRunner
	products  repository.ProductRepository
	movements repository.StockMovementRepository
	orders    repository.PurchaseOrderRepository
	sales     repository.SaleRepository
	suppliers repository.SupplierRepository
	users     repository.UserRepository
	ping      func(ctx context.Context) error
	close     func()
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger, metrics *observability.Metrics) (*backend, error) {
	if cfg.Store.Driver == config.DriverMemory {
		log.Warn().Msg("usando almacenamiento en memoria: los datos se pierden al reiniciar")
		store := memory.NewStore()
		return &backend{
			runner:    store,
			products:  store.Products(),
			movements: store.Movements(),
			orders:    store.PurchaseOrders(),
			sales:     store.Sales(),
			suppliers: store.Suppliers(),
			users:     store.Users(),
			ping:      func(context.Context) error { return nil },
			close:     func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}
	return &backend{
		runner: postgres.NewTxRunner(pool, postgres.TxOptions{
			MaxRetries:  cfg.Ledger.MaxRetries,
			LockTimeout: cfg.Ledger.LockTimeout,
		}, log, metrics),
		products:  postgres.NewProductRepository(pool),
		movements: postgres.NewStockMovementRepository(pool),
		orders:    postgres.NewPurchaseOrderRepository(pool),
		sales:     postgres.NewSaleRepository(pool),
		suppliers: postgres.NewSupplierRepository(pool),
		users:     postgres.NewUserRepository(pool),
		ping:      pool.Ping,
		close:     pool.Close,
	}, nil
}

// newDispatcher elige cómo se entregan las facturas. nil desactiva el envío.
func newDispatcher(cfg *config.Config, log *logger.Logger) (sales.NotificationDispatcher, func()) {
	switch cfg.Dispatch.Mode {
	case config.DispatchAsync:
		q := queue.NewDispatcher(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, cfg.Dispatch.Queue)
		log.Info().Str("redis", cfg.Redis.Addr).Str("queue", cfg.Dispatch.Queue).Msg("facturas vía cola asíncrona")
		return q, func() { _ = q.Close() }
	case config.DispatchSync:
		if !cfg.SMTP.Enabled() {
			log.Warn().Msg("SMTP_HOST vacío: las facturas no se enviarán")
			return nil, func() {}
		}
		return mail.NewSMTPDispatcher(cfg.SMTP), func() {}
	default:
		log.Info().Msg("envío de facturas desactivado")
		return nil, func() {}
	}
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
	metrics := observability.NewMetrics()

	be, err := openBackend(ctx, cfg, log, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer be.close()

	dispatcher, closeDispatcher := newDispatcher(cfg, log)
	defer closeDispatcher()

	ledger := inventory.NewLedgerUseCase(be.runner, be.products, be.movements, metrics)
	productUC := usecase.NewProductUseCase(be.products, be.runner, ledger)
	reportUC := usecase.NewReportUseCase(be.products)
	supplierUC := purchasing.NewSupplierUseCase(be.suppliers)
	orderUC := purchasing.NewPurchaseOrderUseCase(be.runner, ledger, be.orders, be.suppliers, be.products)
	checkoutUC := sales.NewCheckoutUseCase(
		be.runner, ledger, be.products, be.sales, be.users,
		infrapdf.NewSaleInvoiceRenderer(cfg.Sales.StoreName),
		dispatcher, metrics, log,
		sales.Config{
			TaxRate:   decimal.NewFromFloat(cfg.Sales.TaxRate),
			StoreName: cfg.Sales.StoreName,
		},
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(metrics.Middleware())

	// Swagger UI: http://localhost:<port>/docs
	if _, err := os.Stat(cfg.App.SwaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: cfg.App.SwaggerFile,
			Path:     "docs",
			Title:    "Stock Master API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		if err := be.ping(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": cfg.App.Name})
		}
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	httpRouter.Router(app, httpRouter.RouterDeps{
		ProductUC:  productUC,
		ReportUC:   reportUC,
		Ledger:     ledger,
		SupplierUC: supplierUC,
		OrderUC:    orderUC,
		CheckoutUC: checkoutUC,
		JWTSecret:  cfg.JWT.Secret,
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
