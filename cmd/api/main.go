package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/order-allocation/docs"
	"github.com/jhoicas/order-allocation/internal/application/allocation"
	"github.com/jhoicas/order-allocation/internal/application/analytics"
	"github.com/jhoicas/order-allocation/internal/infrastructure/alert"
	"github.com/jhoicas/order-allocation/internal/infrastructure/memory"
	infraredis "github.com/jhoicas/order-allocation/internal/infrastructure/redis"
	"github.com/jhoicas/order-allocation/internal/infrastructure/store"
	httpRouter "github.com/jhoicas/order-allocation/internal/interfaces/http"
	"github.com/jhoicas/order-allocation/pkg/config"
	"github.com/jhoicas/order-allocation/pkg/logger"
	"github.com/jhoicas/order-allocation/pkg/telemetry"
)

const version = "1.0.0"

// @title                       Order Allocation API
// @version                     1.0.0
// @description                 Asignación de órdenes al centro de distribución más cercano con stock suficiente.
// @BasePath                    /
// @securityDefinitions.apikey  ApiKey
// @in                          header
// @name                        Api-Key
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.Log.Level,
	})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuración inválida")
	}
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("db_driver", cfg.DB.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry, version)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar tracing")
	}

	stores, err := store.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir almacenamiento")
	}
	defer stores.Close()
	if stores.Driver == config.DriverMemory {
		log.Warn().Msg("DB_DRIVER=memory: centros y órdenes viven sólo en este proceso")
	}

	// Reserva de order_id: Redis si está configurado (varias instancias), si no en memoria
	var guard allocation.OrderGuard = memory.NewOrderGuard(cfg.Redis.ClaimTTL)
	if cfg.Redis.Addr != "" {
		client, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		guard = infraredis.NewOrderGuard(client, cfg.Redis.ClaimTTL)
	}

	sinks, err := alert.Build(*cfg, log.Component("alerts"), nil)
	if err != nil {
		log.Fatal().Err(err).Msg("configurar sinks de alertas")
	}
	defer sinks.Close()

	allocateUC := allocation.NewAllocateOrderUseCase(allocation.Deps{
		Centers: stores.Centers,
		Orders:  stores.Orders,
		Guard:   guard,
		Alerts:  sinks.Alerts,
		Records: sinks.Records,
		Logger:  log.Component("allocation"),
		Tracer:  tp.Tracer("github.com/jhoicas/order-allocation/allocation"),
	}, allocation.Config{
		MaxCommitAttempts:  cfg.Allocation.MaxCommitAttempts,
		MaxPersistAttempts: cfg.Allocation.MaxPersistAttempts,
		PersistBackoff:     cfg.Allocation.PersistBackoff,
		PersistTimeout:     cfg.Allocation.PersistTimeout,
		SideEffectTimeout:  cfg.Allocation.SideEffectTimeout,
	})
	reportUC := analytics.NewCenterReportUseCase(stores.Centers, stores.Orders, cfg.Allocation.ReportWindowDays, nil)

	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Title = cfg.App.Name + " API"

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AllocateUC:     allocateUC,
		ReportUC:       reportUC,
		Auth:           cfg.Auth,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		ServiceName:    cfg.App.Name,
		DocsFile:       cfg.HTTP.DocsFile,
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
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del tracing")
	}

	log.Info().Msg("aplicación detenida")
}
