package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/http/handlers"
	"github.com/cloudlinker/uploader/internal/http/middleware"
)

type Router struct {
	uploadHandler *handlers.UploadHandler
	logger        *zap.Logger
	cfg           *config.Config
}

func NewRouter(
	uploadHandler *handlers.UploadHandler,
	logger *zap.Logger,
	cfg *config.Config,
) *Router {
	return &Router{
		uploadHandler: uploadHandler,
		logger:        logger,
		cfg:           cfg,
	}
}

func (r *Router) SetupRoutes() *gin.Engine {
	router := gin.New()
	router.HandleMethodNotAllowed = true

	router.Use(middleware.Logger(r.logger))
	router.Use(middleware.ErrorHandler(r.logger))
	router.Use(middleware.CORS(r.cfg.CORS))
	router.Use(middleware.SecurityHeaders())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", r.uploadHandler.HealthCheck)

		upload := v1.Group("/upload")
		if r.cfg.Auth.Enabled {
			upload.Use(middleware.Auth([]byte(r.cfg.Auth.JWTSecret)))
		}
		{
			upload.POST("/image", r.uploadHandler.UploadImage)
			upload.GET("", r.uploadHandler.ListUploads)
		}
	}

	router.NoMethod(func(ctx *gin.Context) {
		ctx.JSON(http.StatusMethodNotAllowed, gin.H{
			"success": false,
			"error":   "Method " + ctx.Request.Method + " not allowed",
		})
	})

	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":  "OK",
			"message": "Upload relay is running",
		})
	})

	return router
}
