// Package provider contains the storage-provider clients the relay forwards
// uploads to. Both backends sit behind the same interface so the relay and
// its adapters never know which one is configured.
package provider

import (
	"context"
	"fmt"
	"io"
)

// UploadInput carries one file to a storage backend.
type UploadInput struct {
	File        io.Reader
	Filename    string
	ContentType string
	Folder      string
}

// UploadOutput is the normalized provider result.
type UploadOutput struct {
	SecureURL string
	PublicID  string
}

type Provider interface {
	Upload(ctx context.Context, in UploadInput) (*UploadOutput, error)
	Ping(ctx context.Context) error
}

// UpstreamError is a rejection from the storage provider. Status and message
// are forwarded to the caller verbatim.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider rejected upload (status %d): %s", e.StatusCode, e.Message)
}
