package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "samurai/docs"
	"samurai/internal/config"
	"samurai/internal/handlers"
	"samurai/internal/middleware"
	"samurai/internal/repositories"
	"samurai/internal/routes"
	"samurai/internal/services"
)

const shutdownTimeout = 10 * time.Second

// App — собранные зависимости сервера.
type App struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	redis  *redis.Client
	router *gin.Engine
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{cfg: cfg, logger: logger}

	// === Redis (необязателен) ===
	if cfg.Redis.Addr != "" {
		a.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := a.redis.Ping(ctx).Err()
		cancel()
		if err != nil {
			if cfg.Verification.Store == "redis" {
				a.Close()
				return nil, fmt.Errorf("redis ping: %w", err)
			}
			logger.Warn("redis unavailable, rate limiting disabled", zap.Error(err))
			_ = a.redis.Close()
			a.redis = nil
		}
	}

	// === DB (необязательна) ===
	if cfg.AccountsEnabled() {
		db, err := OpenDB(cfg.Database.DSN)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.db = db
	}

	a.router = a.buildRouter()
	return a, nil
}

// OpenDB открывает и проверяет соединение с Postgres.
func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return db, nil
}

func (a *App) buildRouter() *gin.Engine {
	cfg := a.cfg

	// === Store ===
	var store repositories.PendingStore
	if cfg.Verification.Store == "redis" {
		store = repositories.NewRedisPendingStore(a.redis, cfg.Verification.TTL)
	} else {
		store = repositories.NewMemoryPendingStore()
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, services.SystemClock)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
		services.SendPolicy{
			Timeout:     cfg.Email.SendTimeout,
			MaxAttempts: cfg.Email.MaxAttempts,
			Backoff:     cfg.Email.RetryBackoff,
		},
		a.logger,
	)

	var accountRepo repositories.AccountRepository
	var authHandler *handlers.AuthHandler
	if a.db != nil {
		accountRepo = repositories.NewAccountRepository(a.db)
		resetRepo := repositories.NewPasswordResetRepository(a.db)
		accountService := services.NewAccountService(accountRepo, authService, a.logger)
		resetService := services.NewPasswordResetService(
			accountRepo, resetRepo, emailService, authService,
			services.SystemClock, cfg.Auth.ResetTokenTTL, cfg.Auth.ResetURL, a.logger,
		)
		authHandler = handlers.NewAuthHandler(accountService, resetService, a.logger)
	} else {
		a.logger.Info("database.url not set: running in verification-only mode")
	}

	verificationService := services.NewVerificationService(
		store,
		accountRepo,
		emailService,
		authService,
		services.NewCodeGenerator(nil),
		services.SystemClock,
		cfg.Verification.TTL,
		a.logger,
	)
	verificationHandler := handlers.NewVerificationHandler(verificationService, a.logger)

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.logger))
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	var authForRoutes services.AuthService
	if authHandler != nil {
		authForRoutes = authService
	}
	return routes.SetupRoutes(
		router,
		verificationHandler,
		authHandler,
		authForRoutes,
		routes.RateLimit{Redis: a.redis, Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		a.logger,
	)
}

// Run слушает порт до SIGINT/SIGTERM и корректно гасит сервер.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           a.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn("db close failed", zap.Error(err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("redis close failed", zap.Error(err))
		}
	}
}
