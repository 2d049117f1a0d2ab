package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/salescrm/backend/internal/application/catalog"
	clientapp "github.com/salescrm/backend/internal/application/client"
	dashboardapp "github.com/salescrm/backend/internal/application/dashboard"
	identityapp "github.com/salescrm/backend/internal/application/identity"
	notificationapp "github.com/salescrm/backend/internal/application/notification"
	salesapp "github.com/salescrm/backend/internal/application/sales"
	visitapp "github.com/salescrm/backend/internal/application/visit"
	"github.com/salescrm/backend/internal/domain/shared"
	"github.com/salescrm/backend/internal/infrastructure/auth"
	"github.com/salescrm/backend/internal/infrastructure/cache"
	"github.com/salescrm/backend/internal/infrastructure/config"
	"github.com/salescrm/backend/internal/infrastructure/email"
	"github.com/salescrm/backend/internal/infrastructure/event"
	"github.com/salescrm/backend/internal/infrastructure/logger"
	"github.com/salescrm/backend/internal/infrastructure/persistence"
	"github.com/salescrm/backend/internal/infrastructure/printing"
	"github.com/salescrm/backend/internal/infrastructure/scheduler"
	"github.com/salescrm/backend/internal/infrastructure/storage"
	"github.com/salescrm/backend/internal/infrastructure/telemetry"
	"github.com/salescrm/backend/internal/infrastructure/whatsapp"
	"github.com/salescrm/backend/internal/interfaces/http/handler"
	"github.com/salescrm/backend/internal/interfaces/http/middleware"
	"github.com/salescrm/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/salescrm/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

// notificationDedupTTL bounds how long a handled notification event is remembered
const notificationDedupTTL = 24 * time.Hour

//	@title			Sales CRM API
//	@version		1.0
//	@description	Clients, visit planning, quotations, orders and product catalog for field sales teams

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	// Planning weeks and "today" follow the business timezone
	time.Local = cfg.App.Location()

	log.Info("Starting Sales CRM backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
		zap.String("timezone", cfg.App.Timezone),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := tracerProvider.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracer provider", zap.Error(err))
		}
	}()

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level),
		logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh),
		logger.WithParameterizedQueries(cfg.App.IsProduction()))
	db, err := persistence.Open(context.Background(), &cfg.Database,
		persistence.WithGormLogger(gormLog),
		persistence.WithSessionTimeZone(cfg.App.Timezone),
		persistence.WithConnectRetry(5, time.Second, log))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		log.Warn("Failed to enable database tracing", zap.Error(err))
	}
	log.Info("Database connected successfully")

	backend := cache.NewBackend(cfg.Redis, log)
	defer func() {
		if err := backend.Close(); err != nil {
			log.Error("Error closing cache", zap.Error(err))
		}
	}()

	var blacklist auth.TokenBlacklist = auth.NewInMemoryTokenBlacklist()
	if backend.IsRedis() {
		blacklist = auth.NewRedisTokenBlacklist(backend.Client)
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	clientRepo := persistence.NewGormClientRepository(db.DB)
	contactRepo := persistence.NewGormContactRepository(db.DB)
	visitRepo := persistence.NewGormVisitRepository(db.DB)
	quotationRepo := persistence.NewGormQuotationRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	channelRepo := persistence.NewGormChannelRepository(db.DB)
	dashboardRepo := persistence.NewGormDashboardRepository(db.DB)
	txManager := persistence.NewGormTxManager(db.DB)

	// Notification handlers send mail, so they must not hold up the request
	eventBus := event.NewInMemoryEventBus(log, event.WithAsyncDispatch())

	// External integrations
	objectStorage, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	mailSender := email.NewSender(cfg.Email, log)
	messenger := whatsapp.New(cfg.WhatsApp, log)
	renderer := printing.NewChromedpRenderer(cfg.Printing, log)
	defer func() {
		if err := renderer.Close(); err != nil {
			log.Error("Error closing PDF renderer", zap.Error(err))
		}
	}()

	// Application services
	jwtService := auth.NewJWTService(cfg.JWT)
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	authService := identityapp.NewAuthService(userRepo, hasher, jwtService, blacklist,
		identityapp.AuthServiceConfig{AllowDemoLogin: cfg.Auth.AllowDemoLogin}, log)
	userService := identityapp.NewUserService(userRepo, hasher, blacklist, eventBus, log)

	clientService := clientapp.NewClientService(clientRepo, contactRepo, visitRepo, quotationRepo, orderRepo,
		txManager, eventBus, log)
	contactService := clientapp.NewContactService(contactRepo, clientRepo, txManager, eventBus, log)
	visitService := visitapp.NewVisitService(visitRepo, clientRepo, userRepo, txManager, eventBus, log)

	quotationService := salesapp.NewQuotationService(quotationRepo, orderRepo, clientRepo, contactRepo, userRepo,
		productRepo, printing.NewQuotationPrinter(renderer), cfg.Printing.Company, txManager, eventBus, log)
	orderService := salesapp.NewOrderService(orderRepo, clientRepo, productRepo, txManager, eventBus, log)

	productService := catalogapp.NewProductService(productRepo, channelRepo, eventBus, log)
	documentService := catalogapp.NewDocumentService(productRepo, objectStorage, log)
	documentConfig := catalogapp.DefaultDocumentServiceConfig()
	documentConfig.UploadURLExpiry = cfg.Storage.PresignExpiry
	documentConfig.DownloadURLExpiry = cfg.Storage.PresignExpiry
	documentService.SetConfig(documentConfig)

	dashboardService := dashboardapp.NewDashboardService(dashboardRepo, backend.Cache, cfg.Dashboard.CacheTTL, log)

	emailService := notificationapp.NewEmailService(mailSender, email.StatusOf(cfg.Email), cfg.App.Name,
		clientRepo, contactRepo, log)
	whatsappService := notificationapp.NewWhatsAppService(messenger, clientRepo, contactRepo, log)

	// Event handlers for cross-module reactions
	once := func(h shared.EventHandler) *event.IdempotentHandler {
		return event.NewIdempotentHandler(h, backend.Cache, nil, notificationDedupTTL, log)
	}
	welcomeHandler := once(notificationapp.NewWelcomeHandler(emailService))
	planningHandler := once(notificationapp.NewPlanningSubmittedHandler(emailService, userRepo, log))
	orderHandler := once(notificationapp.NewOrderNotificationHandler(emailService, messenger, contactRepo, log))
	invalidationHandler := dashboardapp.NewInvalidationHandler(dashboardService, log)
	productDeletedHandler := catalogapp.NewProductDeletedHandler(documentService, log)

	eventBus.Subscribe(welcomeHandler)
	eventBus.Subscribe(planningHandler)
	eventBus.Subscribe(orderHandler)
	eventBus.Subscribe(invalidationHandler)
	eventBus.Subscribe(productDeletedHandler)

	log.Info("Event handlers registered",
		zap.Strings("welcome_events", welcomeHandler.EventTypes()),
		zap.Strings("planning_events", planningHandler.EventTypes()),
		zap.Strings("order_notification_events", orderHandler.EventTypes()),
		zap.Strings("dashboard_invalidation_events", invalidationHandler.EventTypes()),
		zap.Strings("product_deleted_events", productDeletedHandler.EventTypes()),
	)

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	if cfg.Scheduler.Enabled {
		jobs := scheduler.New(log)
		if err := jobs.Register(scheduler.Job{
			Name:       "quotation-expiry",
			Interval:   cfg.Scheduler.QuotationExpiryInterval,
			Timeout:    time.Minute,
			RunOnStart: true,
			Run:        quotationService.ExpireOverdue,
		}); err != nil {
			log.Fatal("Failed to register scheduled job", zap.Error(err))
		}
		if err := jobs.Start(ctx); err != nil {
			log.Fatal("Failed to start scheduler", zap.Error(err))
		}
		defer func() {
			if err := jobs.Stop(context.Background()); err != nil {
				log.Error("Error stopping scheduler", zap.Error(err))
			}
		}()
		log.Info("Scheduler started",
			zap.Duration("quotation_expiry_interval", cfg.Scheduler.QuotationExpiryInterval))
	}

	// HTTP handlers
	healthChecks := []handler.HealthCheck{{
		Name:  "database",
		Check: db.PingContext,
	}}
	if backend.IsRedis() {
		healthChecks = append(healthChecks, handler.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return backend.Client.Ping(ctx).Err() },
		})
	}
	systemHandler := handler.NewSystemHandler(cfg.App.Name, version, healthChecks...)

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService),
		Client:       handler.NewClientHandler(clientService, contactService),
		Contact:      handler.NewContactHandler(contactService),
		Visit:        handler.NewVisitHandler(visitService),
		Quotation:    handler.NewQuotationHandler(quotationService),
		Order:        handler.NewOrderHandler(orderService),
		Product:      handler.NewProductHandler(productService, documentService),
		Dashboard:    handler.NewDashboardHandler(dashboardService),
		Notification: handler.NewNotificationHandler(emailService, whatsappService),
		System:       systemHandler,
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. Tracing - Start the request span and tag it with request and user
	// 5. Security - Add security headers
	// 6. CORS - Handle cross-origin requests
	// 7. BodyLimit - Limit request body size
	// 8. Timeout - Bound request handling time
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName, cfg.Telemetry.Enabled))
	engine.Use(middleware.SpanEnricher())
	engine.Use(middleware.SecureWithConfig(middleware.DefaultSecurityConfig()))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	engine.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))

	engine.GET("/health", systemHandler.Health)
	engine.GET("/swagger/*any", middleware.SwaggerGate(cfg.Swagger.Enabled), ginSwagger.WrapHandler(swaggerFiles.Handler))

	var loginLimiter gin.HandlerFunc
	if cfg.Auth.LoginRateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow)
		defer limiter.Stop()
		loginLimiter = middleware.RateLimit(limiter)
		log.Info("Login rate limiting enabled",
			zap.Int("requests", cfg.Auth.LoginRateLimit),
			zap.Duration("window", cfg.Auth.LoginRateWindow))
	}

	jwtConfig := middleware.DefaultJWTConfig(jwtService)
	jwtConfig.TokenBlacklist = blacklist
	jwtConfig.Logger = log

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))
	router.RegisterAPI(r, handlers, loginLimiter)
	r.Setup()
	log.Info("Routes registered", zap.Int("count", len(r.Routes())))

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
