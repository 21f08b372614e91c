// FilePath: internal/models/models.status.go
package models

import "time"

// UploadState is the derived state of the upload pipeline.
type UploadState string

const (
	StatePending UploadState = "pending"
	StateOK      UploadState = "ok"
	StateError   UploadState = "error"
)

// RequestSnapshot captures an outgoing upload request for diagnostics.
// The Authorization header value is always redacted before capture.
type RequestSnapshot struct {
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers"`
	Payload map[string]string `json:"payload"`
}

// UploadStatus is the coordinator's mutable upload bookkeeping. Only the
// coordinator writes it, after each cycle.
type UploadStatus struct {
	LastUpload   *time.Time
	LastError    string
	UploadCount  int
	EmptyUploads int
	LastRequest  *RequestSnapshot
}

// StatusSnapshot is the read-only view handed to status consumers.
type StatusSnapshot struct {
	State        UploadState      `json:"state"`
	BoxID        string           `json:"box_id"`
	LastUpload   *time.Time       `json:"last_upload,omitempty"`
	NextUpload   *time.Time       `json:"next_upload,omitempty"`
	LastError    string           `json:"last_error,omitempty"`
	UploadCount  int              `json:"upload_count"`
	EmptyUploads int              `json:"empty_uploads"`
	LastRequest  *RequestSnapshot `json:"last_request,omitempty"`
}
