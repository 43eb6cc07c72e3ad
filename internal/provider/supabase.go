package provider

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/cloudlinker/uploader/internal/config"
)

// SupabaseClient stores uploads in a Supabase Storage bucket. Alternate
// backend for deployments that keep media next to their database instead of
// on a media CDN.
type SupabaseClient struct {
	client *storage_go.Client
	bucket string
}

func NewSupabaseClient(cfg config.SupabaseConfig) *SupabaseClient {
	return &SupabaseClient{
		client: storage_go.NewClient(cfg.URL+"/storage/v1", cfg.Key, nil),
		bucket: cfg.Bucket,
	}
}

func (s *SupabaseClient) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	key := objectKey(in.Folder, in.Filename)

	_, err := s.client.UploadFile(s.bucket, key, in.File)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to supabase: %w", err)
	}

	publicURL := s.client.GetPublicUrl(s.bucket, key)
	return &UploadOutput{
		SecureURL: publicURL.SignedURL,
		PublicID:  key,
	}, nil
}

func (s *SupabaseClient) Ping(ctx context.Context) error {
	_, err := s.client.ListFiles(s.bucket, "", storage_go.FileSearchOptions{})
	return err
}

// objectKey builds a unique storage key, keeping the original name readable.
func objectKey(folder, filename string) string {
	ext := filepath.Ext(filename)
	name := strings.TrimSuffix(filename, ext)
	return fmt.Sprintf("%s/%s_%d_%s%s", folder, name, time.Now().Unix(), uuid.New().String()[:8], ext)
}
