package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	appinventory "github.com/tu-usuario/stock-engine/internal/application/inventory"
	"github.com/tu-usuario/stock-engine/internal/infrastructure/memory"
	"github.com/tu-usuario/stock-engine/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/stock-engine/internal/interfaces/http"
	"github.com/tu-usuario/stock-engine/pkg/config"
	"github.com/tu-usuario/stock-engine/pkg/logger"
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
		Str("driver", cfg.Stock.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Almacenamiento: PostgreSQL en producción; memoria para desarrollo local.
	var (
		txRunner appinventory.TxRunner
		queryUC  *appinventory.QueryUseCase
	)
	if cfg.Stock.Driver == "memory" {
		store := memory.New(cfg.Stock.LockTimeout)
		txRunner = store
		queryUC = appinventory.NewQueryUseCase(store.Movements(), store.Levels())
	} else {
		if err := postgres.RunMigrations(cfg.DB.ConnectionString()); err != nil {
			log.Fatal().Err(err).Msg("migraciones")
		}
		log.Info().Msg("migraciones aplicadas")

		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()

		txRunner = postgres.NewTxRunner(pool, cfg.Stock.LockTimeout)
		queryUC = appinventory.NewQueryUseCase(
			postgres.NewMovementRepository(pool),
			postgres.NewStockLevelRepository(pool),
		)
	}

	coordinator := appinventory.NewCoordinator(txRunner, log)
	rebuildUC := appinventory.NewRebuildUseCase(txRunner, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		Coordinator: coordinator,
		Query:       queryUC,
		Rebuild:     rebuildUC,
		JWTSecret:   cfg.JWT.Secret,
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
