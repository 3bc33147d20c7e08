package models

import (
	"encoding/json"
	"time"
)

// Attachment is a media-library asset backing a recording's video file.
type Attachment struct {
	ID        int64           `json:"id"`
	PostID    int64           `json:"post_id"`
	Title     string          `json:"title"`
	MimeType  string          `json:"mime_type"`
	FilePath  string          `json:"file_path"`
	FileURL   string          `json:"file_url"`
	FileSize  int64           `json:"file_size"`
	S3Key     string          `json:"s3_key,omitempty"`
	S3URL     string          `json:"s3_url,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// AttachmentMetadata is the generated metadata stored with each attachment.
type AttachmentMetadata struct {
	SourceURL string `json:"source_url"`
	FileSize  int64  `json:"file_size"`
	MimeType  string `json:"mime_type"`
	DeviceKey string `json:"device_key,omitempty"`
	Duration  int    `json:"duration,omitempty"`
}
