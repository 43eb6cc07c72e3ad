package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cloudlinker/uploader/internal/auth"
)

// Auth rejects requests without a valid bearer token before the relay runs.
// The response message is deliberately generic.
func Auth(jwtSecret []byte) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			unauthorized(ctx)
			return
		}

		userID, err := auth.VerifyToken(token, jwtSecret)
		if err != nil {
			unauthorized(ctx)
			return
		}

		ctx.Set("userID", userID)
		ctx.Next()
	}
}

func unauthorized(ctx *gin.Context) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   "Unauthorized",
	})
}
