// Package router assembles the HTTP surface of the service.
package router

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"mindcare-be/internal/config"
	"mindcare-be/internal/controllers"
	"mindcare-be/internal/metrics"
	"mindcare-be/internal/middleware"
	"mindcare-be/internal/models"
	"mindcare-be/internal/service"
)

// Deps are the collaborators the router wires into handlers
type Deps struct {
	Config      *config.Config
	AuthService service.AuthService
	Metrics     *metrics.Metrics
	Logger      *slog.Logger
}

// New builds the gin engine. Rate limiter cleanup goroutines stop when ctx is done.
func New(ctx context.Context, deps Deps) *gin.Engine {
	cfg := deps.Config

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	authController := controllers.NewAuthController(deps.AuthService, deps.Logger)

	generalRateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
	authRateLimiter := middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitAuthRPS), cfg.RateLimitAuthBurst)

	// Health check endpoint (no rate limiting)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": models.StatusOK})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	api := router.Group("")
	api.Use(generalRateLimiter.LimitMiddleware())
	{
		// Credential routes with stricter rate limiting
		api.POST("/signup", authRateLimiter.LimitMiddleware(), authController.Signup)
		api.POST("/login", authRateLimiter.LimitMiddleware(), authController.Login)

		api.GET("/me", authController.Me)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.NewErrorResponse("Not found"))
	})

	return router
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
	}
	return cc
}
