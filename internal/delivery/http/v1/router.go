package v1

import (
	"net/http"
	"time"

	"go-profile-portal/config"
	"go-profile-portal/internal/delivery/http/middleware"
	"go-profile-portal/internal/delivery/http/response"
	"go-profile-portal/internal/domain"
	"go-profile-portal/internal/usecase"
	"go-profile-portal/pkg/metrics"
	"go-profile-portal/pkg/token"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// MediaURLPrefix is where locally stored uploads are served.
const MediaURLPrefix = "/media"

type RouterDeps struct {
	AuthUC    domain.AuthUsecase
	ProfileUC domain.ProfileUsecase
	ExportUC  domain.ExportUsecase
	HealthUC  usecase.HealthUsecase
	Files     domain.FileStorage
	Tokens    *token.Manager
	Metrics   *metrics.Metrics
	Config    *config.Config
	// MediaRoot is served to signed-in users under MediaURLPrefix when non-empty
	MediaRoot string
}

func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	r := gin.New()

	// Global Middlewares
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins)) // CORS must be first!
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.SecurityHeadersMiddleware(cfg.IsProduction()))
	// Two files plus the text fields
	r.Use(middleware.BodyLimit(2*cfg.MaxUploadBytes + 1<<20))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CSRFMiddleware(cfg.CookieSecure))

	// Health Check
	r.GET("/health", func(c *gin.Context) {
		if deps.HealthUC == nil {
			response.Success(c, http.StatusOK, "System operational", nil)
			return
		}
		status, ok := deps.HealthUC.Check(c.Request.Context())
		if !ok {
			response.Error(c, http.StatusServiceUnavailable, "System degraded", status)
			return
		}
		response.Success(c, http.StatusOK, "System operational", status)
	})

	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	window := time.Duration(cfg.RateLimitWindowSeconds) * time.Second
	loginLimit := middleware.RateLimitMiddleware(middleware.LoginRateLimitConfig(cfg.RateLimitLoginThreshold, window), deps.Metrics)
	registerLimit := middleware.RateLimitMiddleware(middleware.RegisterRateLimitConfig(window), deps.Metrics)
	profileLimit := middleware.RateLimitMiddleware(middleware.ProfileUpdateRateLimitConfig(30, time.Hour), deps.Metrics)

	public := r.Group("")

	// Protected routes
	protected := r.Group("")
	protected.Use(middleware.AuthMiddleware(deps.Tokens, deps.AuthUC))

	// Uploads hold resumes and contact photos, so they need a session too
	if deps.MediaRoot != "" {
		protected.StaticFS(MediaURLPrefix, gin.Dir(deps.MediaRoot, false))
	}

	staff := protected.Group("")
	staff.Use(middleware.RequireStaff())
	{
		NewAuthHandler(public, protected, deps.AuthUC, cfg, loginLimit, registerLimit)
		NewProfileHandler(protected, deps.ProfileUC, deps.Files, profileLimit)
		NewExportHandler(staff, deps.ExportUC, deps.Files, cfg.Location)
	}

	return r
}
