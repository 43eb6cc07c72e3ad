package models

import "time"

// UploadRecord is one row of the upload log. Records are append-only;
// nothing in the service updates or deletes them.
type UploadRecord struct {
	ID           string    `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"originalName"`
	SecureURL    string    `json:"secureUrl"`
	PublicID     string    `json:"publicId"`
	Size         int64     `json:"size"`
	Format       string    `json:"format"`
	UploadedAt   time.Time `json:"uploadedAt"`
}

// UploadResult is what the relay hands back to its adapters after a
// successful provider call.
type UploadResult struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

type UploadListResponse struct {
	Success bool           `json:"success"`
	Uploads []UploadRecord `json:"uploads"`
}
