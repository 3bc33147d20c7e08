package models

import "time"

// RecordingStatus represents recording lifecycle.
//
// StatusProcessing is the schema default but the synchronous create path
// never exposes it: rows are inserted as completed or not at all. It is kept
// for forward compatibility with an asynchronous flow.
const (
	RecordingStatusProcessing = "processing"
	RecordingStatusCompleted  = "completed"
	RecordingStatusFailed     = "failed"
)

// Recording is a captured scrolling-screenshot video of a URL.
type Recording struct {
	ID           int64             `json:"id"`
	PostID       int64             `json:"post_id"`
	URL          string            `json:"url"`
	Status       string            `json:"status"`
	Options      *RecordingOptions `json:"options,omitempty"`
	AttachmentID int64             `json:"attachment_id,omitempty"`
	VideoURL     string            `json:"video_url,omitempty"`
	APIResponse  string            `json:"api_response,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// HasPlayableSource reports whether the recording resolves to at least one
// playable video location. Completed recordings violating this are treated
// as unrenderable by consumers, never as a crash.
func (r *Recording) HasPlayableSource() bool {
	return r.AttachmentID > 0 || r.VideoURL != ""
}
