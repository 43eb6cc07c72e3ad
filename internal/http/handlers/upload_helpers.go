package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/provider"
	"github.com/cloudlinker/uploader/internal/relay"
)

// respondUploadError maps the relay's error taxonomy onto status codes:
// validation → 400, upstream rejection → forwarded status and message,
// anything else → 500 with detail kept server-side.
func (h *UploadHandler) respondUploadError(c *gin.Context, err error) {
	var verr *relay.ValidationError
	if errors.As(err, &verr) {
		h.respondError(c, http.StatusBadRequest, verr.Message)
		return
	}

	var upstream *provider.UpstreamError
	if errors.As(err, &upstream) {
		h.logger.Warn("Provider rejected upload",
			zap.Int("status", upstream.StatusCode),
			zap.String("message", upstream.Message))
		h.respondError(c, upstream.StatusCode, upstream.Message)
		return
	}

	h.logger.Error("Upload failed", zap.Error(err))
	h.respondError(c, http.StatusInternalServerError, "Internal server error")
}

func (h *UploadHandler) respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}
