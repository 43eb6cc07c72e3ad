package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/cloudlinker/uploader/internal/config"
	"github.com/cloudlinker/uploader/internal/signature"
)

// CloudinaryClient performs signed uploads against the Cloudinary image
// upload endpoint. Every request carries a fresh timestamp and a digest over
// the upload parameters; the provider recomputes the digest and rejects
// mismatches.
type CloudinaryClient struct {
	cloudName string
	apiKey    string
	apiSecret string
	baseURL   string
	client    *http.Client

	// now is swapped out in tests for stable timestamps.
	now func() time.Time
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryClient(cfg config.CloudinaryConfig) *CloudinaryClient {
	return &CloudinaryClient{
		cloudName: cfg.CloudName,
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		baseURL:   cfg.BaseURL,
		client:    &http.Client{Timeout: cfg.Timeout},
		now:       time.Now,
	}
}

// Upload issues exactly one signed multipart POST. No retries: a failed call
// is surfaced to the caller as-is.
func (c *CloudinaryClient) Upload(ctx context.Context, in UploadInput) (*UploadOutput, error) {
	timestamp := c.now().Unix()
	sig := signature.Sign(in.Folder, timestamp, c.apiSecret)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", in.Filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, in.File); err != nil {
		return nil, fmt.Errorf("failed to read upload data: %w", err)
	}

	fields := map[string]string{
		"folder":    in.Folder,
		"timestamp": fmt.Sprintf("%d", timestamp),
		"api_key":   c.apiKey,
		"signature": sig,
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("failed to write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	uploadURL := fmt.Sprintf("%s/v1_1/%s/image/upload", c.baseURL, c.cloudName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	var result cloudinaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "Upload failed"
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &UploadOutput{
		SecureURL: result.SecureURL,
		PublicID:  result.PublicID,
	}, nil
}

// Ping checks reachability of the provider host for health reporting. Any
// HTTP answer counts as reachable.
func (c *CloudinaryClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
