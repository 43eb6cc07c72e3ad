package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cloudlinker/uploader/internal/config"
)

// CORS sets the fixed allow-list on every response and answers preflight
// requests with an empty 200.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Header("Access-Control-Allow-Origin", cfg.AllowOrigin)
		ctx.Header("Access-Control-Allow-Methods", cfg.AllowMethods)
		ctx.Header("Access-Control-Allow-Headers", cfg.AllowHeaders)

		if ctx.Request.Method == http.MethodOptions {
			ctx.AbortWithStatus(http.StatusOK)
			return
		}

		ctx.Next()
	}
}
