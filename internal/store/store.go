// Package store persists the upload log: one append-only record per
// completed upload, listed newest first. No update or delete is exposed.
package store

import (
	"context"
	"errors"

	"github.com/cloudlinker/uploader/internal/models"
)

// ErrMissingField is returned by Append when a required record field is
// empty.
var ErrMissingField = errors.New("upload record is missing a required field")

type UploadStore interface {
	Append(ctx context.Context, record *models.UploadRecord) error
	ListRecent(ctx context.Context) ([]models.UploadRecord, error)
}
