package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the outcome of a download attempt
type DownloadStatus string

const (
	StatusProcessing DownloadStatus = "processing"
	StatusCompleted  DownloadStatus = "completed"
	StatusFailed     DownloadStatus = "failed"
)

// DownloadRecord is the persisted history entry for one download attempt
type DownloadRecord struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	URL          string         `json:"url" gorm:"not null"`
	Platform     Platform       `json:"platform" gorm:"not null;index"`
	Format       OutputFormat   `json:"format" gorm:"not null"`
	Quality      Quality        `json:"quality" gorm:"not null"`
	Status       DownloadStatus `json:"status" gorm:"not null;index"`
	ErrorKind    ErrorKind      `json:"error_kind,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty" gorm:"type:text"`
	FileName     string         `json:"file_name,omitempty"`
	SizeBytes    int64          `json:"size_bytes"`
	DurationMs   int64          `json:"duration_ms"`
	StartedAt    time.Time      `json:"started_at" gorm:"index"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// NewDownloadRecord starts a history entry for the request
func NewDownloadRecord(req DownloadRequest, platform Platform, startedAt time.Time) *DownloadRecord {
	return &DownloadRecord{
		ID:        uuid.New().String(),
		URL:       req.URL,
		Platform:  platform,
		Format:    req.Format,
		Quality:   req.Quality,
		Status:    StatusProcessing,
		StartedAt: startedAt,
	}
}

// MarkCompleted marks the attempt as completed with the staged file
func (d *DownloadRecord) MarkCompleted(file *StagedFile, now time.Time) {
	d.Status = StatusCompleted
	if file != nil {
		d.FileName = file.Name()
		d.SizeBytes = file.Size
	}
	d.finish(now)
}

// MarkFailed marks the attempt as failed
func (d *DownloadRecord) MarkFailed(err error, now time.Time) {
	d.Status = StatusFailed
	d.ErrorKind = KindOf(err)
	d.ErrorMessage = err.Error()
	d.finish(now)
}

func (d *DownloadRecord) finish(now time.Time) {
	d.CompletedAt = &now
	d.DurationMs = now.Sub(d.StartedAt).Milliseconds()
}

// IsTerminal checks if the attempt has finished
func (d *DownloadRecord) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusFailed
}
