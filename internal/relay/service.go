// Package relay implements the upload relay once, platform-independently.
// The gin and lambda adapters translate their request shapes into
// UploadRequest and map the returned errors onto status codes.
package relay

import (
	"context"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/events"
	"github.com/cloudlinker/uploader/internal/models"
	"github.com/cloudlinker/uploader/internal/provider"
	"github.com/cloudlinker/uploader/internal/store"
)

// EventPublisher is satisfied by events.Publisher; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, event *events.UploadEvent) error
}

// UploadRequest is the platform-neutral shape of one incoming upload.
type UploadRequest struct {
	File        io.Reader
	Filename    string
	Size        int64
	ContentType string
	Folder      string
}

// Service validates an upload, forwards it signed to the storage provider,
// and appends the result to the upload log. One provider call per
// invocation, no retries.
type Service struct {
	provider  provider.Provider
	store     store.UploadStore
	publisher EventPublisher
	logger    *zap.Logger
	cfg       config.UploadConfig
}

func NewService(
	p provider.Provider,
	s store.UploadStore,
	publisher EventPublisher,
	logger *zap.Logger,
	cfg config.UploadConfig,
) *Service {
	return &Service{
		provider:  p,
		store:     s,
		publisher: publisher,
		logger:    logger,
		cfg:       cfg,
	}
}

// Upload runs the full relay pipeline. Validation failures short-circuit
// before the provider is contacted. A log or publish failure after a
// successful provider call is logged and the upload still succeeds; failing
// the request would only push the caller into re-uploading a file the
// provider already stored.
func (s *Service) Upload(ctx context.Context, req UploadRequest) (*models.UploadResult, error) {
	if req.File == nil {
		return nil, validationErr(MsgNoFile)
	}
	if !s.typeAllowed(req.ContentType) {
		return nil, validationErr(MsgInvalidType)
	}
	if req.Size > s.cfg.MaxFileSize {
		return nil, validationErr(MsgTooLarge)
	}

	folder := req.Folder
	if folder == "" {
		folder = s.cfg.DefaultFolder
	}

	out, err := s.provider.Upload(ctx, provider.UploadInput{
		File:        req.File,
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Folder:      folder,
	})
	if err != nil {
		return nil, err
	}

	record := &models.UploadRecord{
		Filename:     out.PublicID,
		OriginalName: req.Filename,
		SecureURL:    out.SecureURL,
		PublicID:     out.PublicID,
		Size:         req.Size,
		Format:       formatOf(req.ContentType, req.Filename),
		UploadedAt:   time.Now().UTC(),
	}

	if s.store != nil {
		if err := s.store.Append(ctx, record); err != nil {
			s.logger.Warn("Failed to append upload record",
				zap.String("public_id", out.PublicID),
				zap.Error(err))
		}
	}

	if s.publisher != nil {
		event := &events.UploadEvent{
			ID:         record.ID,
			PublicID:   record.PublicID,
			SecureURL:  record.SecureURL,
			Folder:     folder,
			Size:       record.Size,
			Format:     record.Format,
			UploadedAt: record.UploadedAt,
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish upload event", zap.Error(err))
		}
	}

	return &models.UploadResult{
		URL:      out.SecureURL,
		PublicID: out.PublicID,
	}, nil
}

// ListUploads returns the persisted log, newest first.
func (s *Service) ListUploads(ctx context.Context) ([]models.UploadRecord, error) {
	if s.store == nil {
		return []models.UploadRecord{}, nil
	}
	return s.store.ListRecent(ctx)
}

// MaxFileSize exposes the ceiling so adapters can cap multipart parsing.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

func (s *Service) typeAllowed(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	for _, allowed := range s.cfg.AllowedTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// formatOf derives the record's format field: the media-type subtype,
// falling back to the filename extension.
func formatOf(contentType, filename string) string {
	if idx := strings.Index(contentType, "/"); idx >= 0 && idx < len(contentType)-1 {
		return strings.ToLower(contentType[idx+1:])
	}
	if idx := strings.LastIndex(filename, "."); idx >= 0 && idx < len(filename)-1 {
		return strings.ToLower(filename[idx+1:])
	}
	return ""
}
