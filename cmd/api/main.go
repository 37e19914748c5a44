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
	"golang.org/x/text/language"

	"github.com/Facture-2/Facture5-V2/internal/application/auth"
	"github.com/Facture-2/Facture5-V2/internal/application/reports"
	"github.com/Facture-2/Facture5-V2/internal/bootstrap"
	inframetrics "github.com/Facture-2/Facture5-V2/internal/infrastructure/metrics"
	infrapdf "github.com/Facture-2/Facture5-V2/internal/infrastructure/pdf"
	"github.com/Facture-2/Facture5-V2/internal/infrastructure/redisstore"
	httpRouter "github.com/Facture-2/Facture5-V2/internal/interfaces/http"
	"github.com/Facture-2/Facture5-V2/pkg/config"
	"github.com/Facture-2/Facture5-V2/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	stores, err := bootstrap.OpenStores(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacén")
	}
	defer func() {
		if err := stores.Close(); err != nil {
			log.Error().Err(err).Msg("cerrar almacén")
		}
	}()

	rdb, err := bootstrap.OpenRedis(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer rdb.Close()

	metrics := inframetrics.New()
	sessions := redisstore.NewSessionStore(rdb, cfg.Session.TTL)
	authSvc, err := bootstrap.NewAuthService(ctx, cfg, stores, sessions, log.Component("auth"),
		auth.WithObserver(metrics))
	if err != nil {
		log.Fatal().Err(err).Msg("proveedor de identidad")
	}

	lang, err := language.Parse(cfg.Report.Locale)
	if err != nil {
		log.Warn().Err(err).Str("locale", cfg.Report.Locale).Msg("locale de reportes inválido, se usa fr")
		lang = language.French
	}
	pdfGenerator := infrapdf.NewMarotoReportGenerator(lang, cfg.Report.Currency)
	reportsUC := reports.NewUseCase(stores.Invoices, pdfGenerator)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 30,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())
	app.Use(metrics.Middleware())
	app.Use(httpRouter.AccessLog(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs
	if cfg.App.SwaggerEnabled {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: "./docs/swagger.json",
			Path:     "docs",
			Title:    "Facture API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})
	app.Get("/metrics", metrics.Handler())

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthService:    authSvc,
		Reports:        reportsUC,
		CredentialRate: httpRouter.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst),
		JWTSecret:      cfg.JWT.Secret,
		Log:            log.Component("http"),
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
