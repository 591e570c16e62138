// @title           VIM Media Audio Sync API
// @version         1.0.0
// @description     Upload, job status, download and payment endpoints of the VIM Media audio sync web front-end.

// @contact.name   VIM Media Support
// @contact.email  streaming@watchvim.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"vim-audiosync/docs"
	"vim-audiosync/internal/config"
	"vim-audiosync/internal/database"
	"vim-audiosync/internal/handlers"
	"vim-audiosync/internal/middleware"
	"vim-audiosync/internal/obs"
	"vim-audiosync/internal/paypal"
	"vim-audiosync/internal/services"
	"vim-audiosync/internal/store"
	"vim-audiosync/internal/supabase"
	"vim-audiosync/internal/syncengine"
	"vim-audiosync/internal/web"
)

const serviceName = "audiosync-web"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}

	shutdownObs, log := obs.Init(serviceName, cfg.LogLevel, cfg.IsProduction())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownObs(ctx)
	}()

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Update Swagger docs with dynamic base URL
	if cfg.BaseURL != "" {
		if baseURL, err := url.Parse(cfg.BaseURL); err == nil {
			docs.SwaggerInfo.Host = baseURL.Host
			if baseURL.Scheme == "https" {
				docs.SwaggerInfo.Schemes = []string{"https", "http"}
			} else {
				docs.SwaggerInfo.Schemes = []string{"http", "https"}
			}
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	jobs, err := openJobStore(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to open job store")
	}
	defer jobs.Close()

	storageClient := supabase.NewStorageClient(cfg.SupabaseURL, cfg.SupabasePublishableKey, cfg.SupabaseStorageBucket)

	authClient, err := supabase.NewAuthClient(cfg)
	if err != nil {
		log.WithError(err).Warn("Supabase auth unavailable, profile pages will show the user id only")
	}

	engineClient := syncengine.NewClient(cfg.SyncEngineURL, cfg.SyncEngineAPIKey)

	var verifier paypal.OrderVerifier
	if cfg.VerifiesPayPalOrders() {
		v, err := paypal.NewVerifier(cfg.PayPalClientID, cfg.PayPalClientSecret, cfg.PayPalAPIBase, cfg.PayPerJobAmount)
		if err != nil {
			log.WithError(err).Fatal("Failed to initialize PayPal client")
		}
		verifier = v
	} else {
		log.Warn("PayPal credentials not set, mark-paid will not verify orders")
	}

	svcCfg := services.JobServiceConfig{PaymentRequired: cfg.PaymentRequired}
	if cfg.EngineWebhookToken != "" {
		svcCfg.CallbackURL = cfg.BaseURL + "/webhooks/engine"
	}
	if cfg.DeleteSourceMedia {
		svcCfg.Cleanup = services.NewStorageService(storageClient, log)
	}
	jobService := services.NewJobService(jobs, storageClient, engineClient, verifier, svcCfg, log)

	templates, err := web.Templates()
	if err != nil {
		log.WithError(err).Fatal("Failed to parse templates")
	}

	// Initialize handlers
	var users handlers.UserLookup
	if authClient != nil {
		users = authClient
	}
	pagesHandler := handlers.NewPagesHandler(cfg, templates, users, log)
	uploadHandler := handlers.NewUploadHandler(jobService, cfg.MaxUploadMB*1024*1024, log)
	jobHandler := handlers.NewJobHandler(jobService, log)
	downloadHandler := handlers.NewDownloadHandler(jobService, log)
	ordersHandler := handlers.NewOrdersHandler(jobService, log)
	webhookHandler := handlers.NewWebhookHandler(cfg.EngineWebhookToken, jobService, log)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if !cfg.IsProduction() {
		router.Use(gin.Logger())
	}
	router.Use(obs.GinMetrics())

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health and metrics (no auth)
	router.GET("/health", handlers.HealthHandler)
	router.GET("/ready", handlers.ReadyHandler(jobs))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pages
	router.StaticFS("/static", web.Static())
	router.GET("/", pagesHandler.Index)
	router.GET("/login", pagesHandler.Login)
	router.GET("/signup", pagesHandler.Signup)
	router.POST("/logout", pagesHandler.Logout)
	router.GET("/profile", middleware.OptionalAuth(cfg), pagesHandler.Profile)
	router.GET("/api/me", middleware.AuthMiddleware(cfg), pagesHandler.GetMe)

	// Jobs
	router.POST("/upload", uploadHandler.Upload)
	router.GET("/job/:id", jobHandler.GetJob)
	router.GET("/download/:id", downloadHandler.Download)

	// Payments
	router.POST("/paypal/mark-paid/:id", ordersHandler.MarkPaid)

	// Webhook (no auth, uses shared token)
	router.POST("/webhooks/engine", webhookHandler.HandleEngineWebhook)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("Server stopped")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Graceful shutdown failed")
		os.Exit(1)
	}
}

func openJobStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (store.JobStore, error) {
	switch cfg.JobStore {
	case config.JobStoreRedis:
		rs, err := store.NewRedisStore(ctx, store.RedisOptions{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.JobTTL,
		}, log)
		if err != nil {
			return nil, err
		}
		return rs, nil
	case config.JobStorePostgres:
		db, err := database.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := database.NewMigrator(db, log).Run(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info("Migrations completed successfully")
		return store.NewPostgresStore(db), nil
	default:
		log.Warn("Using in-memory job store, jobs are lost on restart")
		return store.NewMemoryStore(), nil
	}
}
