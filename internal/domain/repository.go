package domain

import "errors"

// ErrRecordNotFound is returned when a history record does not exist
var ErrRecordNotFound = errors.New("record not found")

// HistoryRepository defines the interface for download history persistence
type HistoryRepository interface {
	// Create stores a new history record
	Create(record *DownloadRecord) error

	// Update updates an existing history record
	Update(record *DownloadRecord) error

	// Delete deletes a history record by ID
	Delete(id string) error

	// FindByID finds a history record by ID
	FindByID(id string) (*DownloadRecord, error)

	// FindAll returns records newest first, with optional filters
	FindAll(filters map[string]interface{}) ([]*DownloadRecord, error)

	// Count returns the total number of records
	Count() (int64, error)

	// GetStats returns download statistics
	GetStats() (*DownloadStats, error)
}

// DownloadStats represents download statistics
type DownloadStats struct {
	Total      int64            `json:"total"`
	Processing int64            `json:"processing"`
	Completed  int64            `json:"completed"`
	Failed     int64            `json:"failed"`
	ByPlatform map[string]int64 `json:"by_platform"`
	TotalBytes int64            `json:"total_bytes"`
}
