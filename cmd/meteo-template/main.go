package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	httpapi "github.com/i474232898/meteo-template/internal/api/http"
	"github.com/i474232898/meteo-template/internal/config"
	"github.com/i474232898/meteo-template/internal/scheduler"
	"github.com/i474232898/meteo-template/internal/store"
	"github.com/i474232898/meteo-template/internal/upload"
	"github.com/i474232898/meteo-template/internal/weather"
	"github.com/i474232898/meteo-template/internal/weather/providers"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log := cfg.Logger()
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var provider weather.Provider = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, providers.OpenWeatherOptions{
		BaseURL: cfg.OpenWeatherURL,
		Country: cfg.Country,
		Lang:    cfg.Lang,
		Backoff: providers.Backoff{Retries: cfg.ProviderMaxRetries},
	})
	if cfg.ProviderRPS > 0 {
		provider = providers.NewRateLimitedProvider(provider, cfg.ProviderRPS, 1)
	}
	if cfg.CacheTTL > 0 {
		provider = store.NewCachedProvider(provider, store.NewMemoryStore(len(cfg.Cities)*2, cfg.CacheTTL, nil))
	}

	selector, err := cfg.Selector(weather.RealClock{})
	if err != nil {
		return err
	}
	deriver, err := cfg.Deriver()
	if err != nil {
		return err
	}
	sheetScheme, err := cfg.SpreadsheetScheme()
	if err != nil {
		return err
	}
	flatScheme, err := cfg.FlatScheme()
	if err != nil {
		return err
	}

	service := weather.NewService(provider, selector, deriver, cfg.Cities, log)
	uploads := upload.NewStore(cfg.UploadDir, log)

	// Removes uploads left behind by requests that never reached their cleanup.
	sched := scheduler.New(uploads, cfg.UploadSweepInterval, cfg.UploadMaxAge, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "meteo-template",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		BodyLimit:             cfg.BodyLimitMB * 1024 * 1024,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "meteo-template",
		})
	})

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:   service,
		Uploads:   uploads,
		Sheet:     sheetScheme,
		Flat:      flatScheme,
		SheetName: cfg.SheetName,
		Logger:    log,
	})

	go func() {
		log.Info("listening", "port", cfg.Port, "provider", provider.Name(), "cities", len(cfg.Cities))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
