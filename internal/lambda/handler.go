// Package lambda adapts the relay to API Gateway v2. It carries no upload
// logic of its own: requests are translated into relay.UploadRequest and the
// relay's errors back into HTTP responses, mirroring the gin adapter.
package lambda

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	awsevents "github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/auth"
	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/provider"
	"github.com/cloudlinker/uploader/internal/relay"
)

type Handler struct {
	relay   *relay.Service
	cors    config.CORSConfig
	authCfg config.AuthConfig
	logger  *zap.Logger
}

func NewHandler(relaySvc *relay.Service, cors config.CORSConfig, authCfg config.AuthConfig, logger *zap.Logger) *Handler {
	return &Handler{
		relay:   relaySvc,
		cors:    cors,
		authCfg: authCfg,
		logger:  logger,
	}
}

// Handle routes one API Gateway event. POST uploads, GET lists, OPTIONS
// answers preflight; anything else is 405. Same policy as the gin adapter.
func (h *Handler) Handle(ctx context.Context, req awsevents.APIGatewayV2HTTPRequest) (awsevents.APIGatewayV2HTTPResponse, error) {
	method := req.RequestContext.HTTP.Method

	if method == http.MethodOptions {
		return h.respond(http.StatusOK, nil), nil
	}

	if h.authCfg.Enabled && !h.authorized(req) {
		return h.respondJSON(http.StatusUnauthorized, models.APIResponse{Success: false, Error: "Unauthorized"}), nil
	}

	switch method {
	case http.MethodPost:
		return h.handleUpload(ctx, req), nil
	case http.MethodGet:
		return h.handleList(ctx), nil
	default:
		return h.respondJSON(http.StatusMethodNotAllowed, models.APIResponse{
			Success: false,
			Error:   "Method " + method + " not allowed",
		}), nil
	}
}

func (h *Handler) handleUpload(ctx context.Context, req awsevents.APIGatewayV2HTTPRequest) awsevents.APIGatewayV2HTTPResponse {
	upload, err := parseUpload(req)
	if err != nil {
		return h.respondJSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: relay.MsgNoFile})
	}

	result, err := h.relay.Upload(ctx, *upload)
	if err != nil {
		return h.uploadError(err)
	}

	return h.respondJSON(http.StatusOK, map[string]interface{}{
		"success":  true,
		"url":      result.URL,
		"publicId": result.PublicID,
	})
}

func (h *Handler) handleList(ctx context.Context) awsevents.APIGatewayV2HTTPResponse {
	records, err := h.relay.ListUploads(ctx)
	if err != nil {
		h.logger.Error("Failed to list uploads", zap.Error(err))
		return h.respondJSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: "Internal server error"})
	}
	return h.respondJSON(http.StatusOK, models.UploadListResponse{Success: true, Uploads: records})
}

func (h *Handler) uploadError(err error) awsevents.APIGatewayV2HTTPResponse {
	var verr *relay.ValidationError
	if errors.As(err, &verr) {
		return h.respondJSON(http.StatusBadRequest, models.APIResponse{Success: false, Error: verr.Message})
	}

	var upstream *provider.UpstreamError
	if errors.As(err, &upstream) {
		return h.respondJSON(upstream.StatusCode, models.APIResponse{Success: false, Error: upstream.Message})
	}

	h.logger.Error("Upload failed", zap.Error(err))
	return h.respondJSON(http.StatusInternalServerError, models.APIResponse{Success: false, Error: "Internal server error"})
}

// parseUpload extracts the file part ("image" or "file") and optional
// "folder" field from the multipart body.
func parseUpload(req awsevents.APIGatewayV2HTTPRequest) (*relay.UploadRequest, error) {
	contentType := headerValue(req.Headers, "content-type")
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return nil, errors.New("not a multipart request")
	}

	body := req.Body
	if req.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, err
		}
		body = string(decoded)
	}

	reader := multipart.NewReader(strings.NewReader(body), params["boundary"])

	var upload *relay.UploadRequest
	folder := ""
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch part.FormName() {
		case "image", "file":
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, err
			}
			upload = &relay.UploadRequest{
				File:        bytes.NewReader(data),
				Filename:    part.FileName(),
				Size:        int64(len(data)),
				ContentType: part.Header.Get("Content-Type"),
			}
		case "folder":
			data, err := io.ReadAll(part)
			if err != nil {
				return nil, err
			}
			folder = string(data)
		}
	}

	if upload == nil {
		return nil, errors.New("no file part")
	}
	upload.Folder = folder
	return upload, nil
}

func (h *Handler) authorized(req awsevents.APIGatewayV2HTTPRequest) bool {
	header := headerValue(req.Headers, "authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return false
	}
	_, err := auth.VerifyToken(token, []byte(h.authCfg.JWTSecret))
	return err == nil
}

func headerValue(headers map[string]string, name string) string {
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

func (h *Handler) respond(status int, body []byte) awsevents.APIGatewayV2HTTPResponse {
	headers := map[string]string{
		"Access-Control-Allow-Origin":  h.cors.AllowOrigin,
		"Access-Control-Allow-Methods": h.cors.AllowMethods,
		"Access-Control-Allow-Headers": h.cors.AllowHeaders,
	}
	if body != nil {
		headers["Content-Type"] = "application/json"
	}
	return awsevents.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}

func (h *Handler) respondJSON(status int, v interface{}) awsevents.APIGatewayV2HTTPResponse {
	b, _ := json.Marshal(v)
	return h.respond(status, b)
}
