package domain

import (
	"path/filepath"
	"time"
)

// StagedFile is a converted file waiting to be served. It is owned by
// exactly one request and removed after the response.
type StagedFile struct {
	Path      string       `json:"path"`
	Format    OutputFormat `json:"format"`
	Size      int64        `json:"size"`
	CreatedAt time.Time    `json:"created_at"`
}

// Name returns the base name of the staged file
func (f *StagedFile) Name() string {
	return filepath.Base(f.Path)
}

// AttachmentName is the file name presented to the client
func (f *StagedFile) AttachmentName() string {
	return "download." + string(f.Format)
}
