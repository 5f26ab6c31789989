package router

import (
	"context"

	"ecoblock-backend/internal/application/imports"
	matsvc "ecoblock-backend/internal/application/materials"
	"ecoblock-backend/internal/application/prediction"
	"ecoblock-backend/internal/application/sources"
	"ecoblock-backend/internal/config"
	"ecoblock-backend/internal/infrastructure/database"
	healthhandler "ecoblock-backend/internal/interfaces/handlers/health"
	mathandler "ecoblock-backend/internal/interfaces/handlers/materials"
	"ecoblock-backend/internal/middleware"

	"github.com/bsm/redislock"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Deps are the opened resources the app is wired from. Rdb and Context may be nil.
type Deps struct {
	// Context is cancelled when the server shuts down.
	Context   context.Context
	Config    *config.Config
	DB        *gorm.DB
	Rdb       *redis.Client
	Predictor *prediction.Predictor
}

// NewApp registers global middleware and every route.
func NewApp(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
		BodyLimit:               16 * 1024 * 1024,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.CORSAllowedOrigins}))
	if cfg.MetricsEnabled {
		app.Use(middleware.Metrics())
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	app.Use(middleware.HealthMarker(d.Rdb))
	app.Use(middleware.RouteLogger())

	hh := &healthhandler.Handlers{
		Rdb:            d.Rdb,
		Model:          d.Predictor,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if sqlDB, err := d.DB.DB(); err == nil {
		hh.DB = sqlDB
	} else {
		log.Warn().Err(err).Msg("router: no sql handle for health pings")
	}
	app.Get("/", hh.Home)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	store := &database.MaterialStore{DB: d.DB}
	importer := &imports.Importer{Store: store}
	if d.Rdb != nil {
		importer.Locker = redislock.New(d.Rdb)
	}
	mh := &mathandler.Handlers{
		Service: &matsvc.Service{
			Store:     store,
			Verifier:  sources.Verifier{},
			Predictor: d.Predictor,
			PageSize:  cfg.ExportPageSize,
		},
		Importer:    importer,
		Reloader:    d.Predictor,
		AdminKey:    cfg.HealthAdminKey,
		BaseContext: d.Context,
	}

	api := app.Group("/api/v1")

	mg := api.Group("/materials")
	mg.Get("/", mh.List)
	mg.Get("/export", mh.ExportCSV)
	mg.Get("/export.xlsx", mh.ExportXLSX)
	mg.Post("/import", mh.Import)
	mg.Get("/:id", mh.Get)
	mg.Post("/", mh.Create)

	api.Get("/predictions/:id", mh.Predict)
	api.Post("/predictions/reload", mh.ReloadModel)
	api.Get("/analytics/carbon-savings", mh.CarbonSavings)
	api.Get("/suggestions/:id", mh.Suggestions)
	api.Get("/sources", mh.Sources)

	return app
}
