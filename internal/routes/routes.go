package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"samurai/internal/handlers"
	"samurai/internal/middleware"
	"samurai/internal/services"
)

// RateLimit — лимит на старт верификации (каждый вызов — исходящее письмо).
type RateLimit struct {
	Redis    *redis.Client // nil — без лимита
	Requests int
	Window   time.Duration
}

// SetupRoutes; authHandler/auth могут быть nil — тогда аккаунтные ручки не публикуются.
func SetupRoutes(
	r *gin.Engine,
	verificationHandler *handlers.VerificationHandler,
	authHandler *handlers.AuthHandler,
	auth services.AuthService,
	limit RateLimit,
	logger *zap.Logger,
) *gin.Engine {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	startLimiter := middleware.RateLimiter(limit.Redis, "start_verification", limit.Requests, limit.Window, logger)
	forgotLimiter := middleware.RateLimiter(limit.Redis, "forgot_password", limit.Requests, limit.Window, logger)

	// клиент исторически ходит и с префиксом /api, и без него
	for _, g := range []*gin.RouterGroup{r.Group(""), r.Group("/api")} {
		g.POST("/register-start-verification", startLimiter, verificationHandler.StartVerification)
		g.POST("/verify-code", verificationHandler.VerifyCode)

		if authHandler == nil || auth == nil {
			continue
		}
		g.POST("/login", authHandler.Login)
		g.POST("/forgot-password", forgotLimiter, authHandler.ForgotPassword)
		g.POST("/reset-password", authHandler.ResetPassword)
		g.GET("/me", middleware.AuthMiddleware(auth), authHandler.Me)
	}

	return r
}
