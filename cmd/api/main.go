package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/jholscan/jholscan/internal/application"
	appanalytics "github.com/jholscan/jholscan/internal/application/analytics"
	appscans "github.com/jholscan/jholscan/internal/application/scans"
	"github.com/jholscan/jholscan/internal/config"
	domain "github.com/jholscan/jholscan/internal/domain/scans"
	openaiclient "github.com/jholscan/jholscan/internal/infra/ai/openai"
	mysqlp "github.com/jholscan/jholscan/internal/infra/db/mysql"
	postgresp "github.com/jholscan/jholscan/internal/infra/db/postgres"
	filestore "github.com/jholscan/jholscan/internal/infra/history/file"
	"github.com/jholscan/jholscan/internal/infra/httpserver"
	minioStore "github.com/jholscan/jholscan/internal/infra/storage"
	"github.com/jholscan/jholscan/internal/middleware"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// init history backend
	var history domain.Repository
	var db *sql.DB
	switch cfg.History.Backend {
	case "mysql":
		db, err = mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		repo := mysqlp.NewHistoryRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("mysql migrate error: %v", err)
		}
		history = repo
	case "postgres":
		db, err = postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		repo := postgresp.NewHistoryRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			log.Fatalf("postgres migrate error: %v", err)
		}
		history = repo
	default:
		store, err := filestore.New(cfg.History.Path)
		if err != nil {
			log.Fatalf("history store error: %v", err)
		}
		history = store
	}
	if db != nil {
		defer db.Close()
	}

	// init upload archive (optional)
	var archive domain.ArtifactStore
	if cfg.Archive.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			log.Fatalf("minio init error: %v", err)
		}
		archive = store
	}

	// init model client
	client := openaiclient.NewClient(cfg.AI.APIKey, cfg.AI.Model)
	adapter := &appscans.Adapter{
		Client: client,
		Clock:  application.SystemClock{},
	}

	// init services
	svc := appscans.NewService(history, adapter, archive, application.SystemClock{})
	analytics := appanalytics.NewService(history)

	// init router
	mux := chi.NewRouter()
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	mux.Use(middleware.RateLimitMiddleware(60, 1))
	if len(cfg.Server.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(cfg.Server.APIKeys))
	}

	checkers := map[string]middleware.HealthChecker{
		"service": middleware.CheckFunc(func(ctx context.Context) error { return nil }),
	}
	if db != nil {
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
	}
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Mount("/", httpserver.NewRouter(svc, analytics))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
