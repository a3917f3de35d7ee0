// @title                       Inventario de Componentes API
// @version                     1.0
// @description                 Operaciones de stock (agregar, retirar, trasladar) con ledger de auditoría inmutable.
// @BasePath                    /
// @securityDefinitions.apikey  Bearer
// @in                          header
// @name                        Authorization
// @description                 Bearer <token JWT>
package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"golang.org/x/sync/errgroup"

	_ "github.com/jhoicas/Inventario-componentes/docs"
	"github.com/jhoicas/Inventario-componentes/internal/application/inventory"
	"github.com/jhoicas/Inventario-componentes/internal/application/usecase"
	"github.com/jhoicas/Inventario-componentes/internal/domain/repository"
	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/memory"
	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/notify"
	"github.com/jhoicas/Inventario-componentes/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Inventario-componentes/internal/interfaces/http"
	"github.com/jhoicas/Inventario-componentes/pkg/config"
	"github.com/jhoicas/Inventario-componentes/pkg/logger"
)

// stores repositorios y TxRunner del driver elegido.
type stores struct {
	txRunner   inventory.TxRunner
	views      inventory.SnapshotReader
	components repository.ComponentRepository
	locations  repository.StorageLocationRepository
	stock      repository.ComponentLocationRepository
	ledger     repository.StockTransactionRepository
	close      func()
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
		Str("store", cfg.App.StoreDriver).
		Msg("iniciando aplicación")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer st.close()

	stockOps := inventory.NewStockOperationsUseCase(
		st.txRunner, st.components, st.locations, st.stock,
		inventory.WithLogger(log.Named("stock")),
		inventory.WithObserver(notify.NewReorderObserver(log)),
		inventory.WithMaxTxAttempts(cfg.Stock.MaxTxAttempts),
	)
	stockQuery := inventory.NewComponentStockUseCase(st.views, st.components, st.stock, st.ledger)
	componentUC := usecase.NewComponentUseCase(st.components)
	locationUC := usecase.NewLocationUseCase(st.locations)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(httpRouter.RequestLogger(log.Named("http")))

	// Swagger UI: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Inventario de Componentes API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.App.StoreDriver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockOps:    stockOps,
		StockQuery:  stockQuery,
		ComponentUC: componentUC,
		LocationUC:  locationUC,
		JWTSecret:   cfg.JWT.Secret,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("servidor HTTP escuchando")
		return app.Listen(cfg.HTTP.Addr())
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("señal de apagado recibida, cerrando servidor...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("servidor HTTP finalizado")
	}
	log.Info().Msg("aplicación detenida")
}

func openStores(ctx context.Context, cfg *config.Config, log *logger.Logger) (*stores, error) {
	if cfg.App.StoreDriver == config.StoreDriverMemory {
		log.Warn().Msg("almacén en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &stores{
			txRunner:   s,
			views:      s,
			components: s.Components(),
			locations:  s.Locations(),
			stock:      s.ComponentLocations(),
			ledger:     s.Transactions(),
			close:      func() {},
		}, nil
	}

	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(cfg.DB.ConnectionString()); err != nil {
			return nil, err
		}
		log.Info().Msg("migraciones aplicadas")
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	runner := postgres.NewTxRunner(pool)
	return &stores{
		txRunner:   runner,
		views:      runner,
		components: postgres.NewComponentRepository(pool),
		locations:  postgres.NewStorageLocationRepository(pool),
		stock:      postgres.NewComponentLocationRepository(pool),
		ledger:     postgres.NewStockTransactionRepository(pool),
		close:      pool.Close,
	}, nil
}
