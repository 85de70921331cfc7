package model

import "time"

// Document represents a single uploaded file's metadata record plus a
// reference to its stored bytes. ChecksumSHA256 is unique within a scope;
// duplicate content in the same scope is rejected at upload time.
type Document struct {
	ID             string         `json:"id"`
	ScopeID        string         `json:"scope_id"`
	Filename       string         `json:"filename"`
	OriginalName   string         `json:"original_name"`
	FileSize       int64          `json:"file_size"`
	MimeType       string         `json:"mime_type,omitempty"`
	FileExtension  string         `json:"file_extension"`
	StoragePath    string         `json:"storage_path"`
	StorageBackend StorageBackend `json:"storage_backend"`
	ChecksumMD5    string         `json:"checksum_md5"`
	ChecksumSHA256 string         `json:"checksum_sha256"`

	Status            DocumentStatus `json:"status"`
	UploadDate        time.Time      `json:"upload_date"`
	ProcessingStarted *time.Time     `json:"processing_started,omitempty"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`

	ErrorMessage string `json:"error_message,omitempty"`
	RetryCount   int    `json:"retry_count"`

	Metadata map[string]any `json:"metadata,omitempty"`
	Tags     []Tag          `json:"tags"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
