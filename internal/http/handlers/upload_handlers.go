package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/relay"
)

const imageParamKey = "image"

// Pinger reports the health of one backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to the Pinger interface.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type UploadHandler struct {
	relay   *relay.Service
	pingers map[string]Pinger
	logger  *zap.Logger
}

func NewUploadHandler(relaySvc *relay.Service, pingers map[string]Pinger, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		relay:   relaySvc,
		pingers: pingers,
		logger:  logger,
	}
}

// UploadImage accepts one multipart file under the "image" field plus an
// optional "folder" field and relays it to the storage provider.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile(imageParamKey)
	if err != nil {
		h.respondError(c, http.StatusBadRequest, relay.MsgNoFile)
		return
	}
	defer file.Close()

	result, err := h.relay.Upload(c.Request.Context(), relay.UploadRequest{
		File:        file,
		Filename:    header.Filename,
		Size:        header.Size,
		ContentType: header.Header.Get("Content-Type"),
		Folder:      c.PostForm("folder"),
	})
	if err != nil {
		h.respondUploadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      result.URL,
		"publicId": result.PublicID,
	})
}

// ListUploads returns the upload log, newest first.
func (h *UploadHandler) ListUploads(c *gin.Context) {
	records, err := h.relay.ListUploads(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list uploads", zap.Error(err))
		h.respondError(c, http.StatusInternalServerError, "Internal server error")
		return
	}

	c.JSON(http.StatusOK, models.UploadListResponse{
		Success: true,
		Uploads: records,
	})
}

// HealthCheck pings each backing service and reports 503 when any is down.
func (h *UploadHandler) HealthCheck(c *gin.Context) {
	services := make(map[string]string)
	overall := "healthy"

	for name, pinger := range h.pingers {
		if err := pinger.Ping(c.Request.Context()); err != nil {
			services[name] = "unhealthy: " + err.Error()
			overall = "unhealthy"
		} else {
			services[name] = "healthy"
		}
	}

	statusCode := http.StatusOK
	if overall == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, models.APIResponse{
		Success: overall == "healthy",
		Data: models.HealthCheck{
			Status:    overall,
			Timestamp: time.Now(),
			Services:  services,
		},
	})
}
