// Copyright (c) 2026 Hellomouse. All rights reserved.

// Package files implements the multipart file-ingest pipeline: per-user
// uploads, staged-then-atomically-committed storage, and the
// profile-picture resize variant.
package files

import "time"

const (
	// MaxOriginalNameLength bounds the stored filename stem.
	MaxOriginalNameLength = 2047

	// MaxExtensionLength bounds the stored file extension.
	MaxExtensionLength = 4

	// GlobalUploadAcceptCap bounds the number of multipart parts a
	// single file-ingest request will process before draining the rest
	// as failed.
	GlobalUploadAcceptCap = 50

	// ProfilePictureSize is the square resize-to-fill target in pixels.
	ProfilePictureSize = 200
)

// UserFile is a single uploaded file owned by a user.
type UserFile struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	OriginalName string    `json:"original_name"`
	Extension    string    `json:"file_extension"`
	UploadDate   time.Time `json:"upload_date"`
	FileSize     int64     `json:"file_size"`
}

// IngestResult is the outcome of a multipart ingest request: accepted
// file ids in submission order, and the index (0-based, among parts seen)
// of every part that failed.
type IngestResult struct {
	Succeeded []string `json:"succeeded"`
	Failed    []int    `json:"failed"`
}
