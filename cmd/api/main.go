package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courseportal/docs"
	"courseportal/internal/config"
	"courseportal/internal/database"
	"courseportal/internal/database/migration"
	handlers "courseportal/internal/http/handler"
	"courseportal/internal/http/middleware"
	"courseportal/internal/logger"
	"courseportal/internal/metrics"
	"courseportal/internal/otel"
	"courseportal/internal/repository/postgres"
	"courseportal/internal/service"
	"courseportal/internal/storage"
)

// sessionPurgeInterval is how often expired sessions are dropped from the store.
const sessionPurgeInterval = 15 * time.Minute

// @title Course Portal API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	log := logger.New(os.Stdout, cfg.Location())
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		fatal(log, "tracing_init_failed", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		fatal(log, "database_connect_failed", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		fatal(log, "database_migration_failed", err)
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		fatal(log, "object_storage_init_failed", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder, err := metrics.New(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}
	httpMetrics, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		fatal(log, "metrics_init_failed", err)
	}

	accounts := postgres.NewAccountPostgres(db)
	sessions := postgres.NewSessionPostgres(db)
	units := postgres.NewUnitPostgres(db)
	files := postgres.NewFilePostgres(db)

	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(recorder),
		service.WithNotifier(service.NewNotifier(cfg.Notify.Enabled, log)),
	}
	hasher := service.NewBcryptHasher(cfg.Auth.BcryptCost)
	authSvc := service.NewAuthService(accounts, sessions, hasher, cfg.Auth.SessionTTL, opts...)
	svcs := handlers.Services{
		Auth:     authSvc,
		Accounts: service.NewAccountService(accounts, units, files, hasher, opts...),
		Units:    service.NewUnitService(units, files, objStore, opts...),
		Files:    service.NewFileService(units, files, objStore, cfg.Upload.MaxFileBytes, cfg.Upload.PresignExpiry, opts...),
	}

	go purgeSessions(ctx, authSvc, log)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Upload.MaxRequestBytes,
	})

	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(httpMetrics.Handler())
	app.Use(middleware.CORS(cfg.CORSAllowOrigins))
	app.Use(middleware.Session(authSvc))

	handlers.RegisterRoutes(app, db, svcs, cfg.Auth)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	go func() {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(sctx); err != nil {
			log.Error("server_shutdown_failed", err, nil)
		}
	}()

	addr := ":" + cfg.Port
	log.Info("server_starting", map[string]any{"addr": addr})
	if err := app.Listen(addr); err != nil {
		fatal(log, "server_failed", err)
	}
}

// purgeSessions drops expired sessions until ctx is done.
func purgeSessions(ctx context.Context, auth service.AuthService, log *logger.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpired(ctx)
			if err != nil {
				log.Error("session_purge_failed", err, nil)
				continue
			}
			if n > 0 {
				log.Info("sessions_purged", map[string]any{"count": n})
			}
		}
	}
}

func fatal(log *logger.Logger, msg string, err error) {
	log.Error(msg, err, nil)
	os.Exit(1)
}
