package infrastructure

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/vidgrab-go/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// allowedFilters are the columns FindAll may filter on
var allowedFilters = map[string]bool{
	"platform": true,
	"status":   true,
	"format":   true,
}

// SQLiteHistoryRepository implements HistoryRepository using SQLite
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (and migrates) the history database
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// Create stores a new record
func (r *SQLiteHistoryRepository) Create(record *domain.DownloadRecord) error {
	return r.db.Create(record).Error
}

// Update saves an existing record
func (r *SQLiteHistoryRepository) Update(record *domain.DownloadRecord) error {
	return r.db.Save(record).Error
}

// Delete deletes a record by ID
func (r *SQLiteHistoryRepository) Delete(id string) error {
	result := r.db.Delete(&domain.DownloadRecord{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

// FindByID finds a record by ID
func (r *SQLiteHistoryRepository) FindByID(id string) (*domain.DownloadRecord, error) {
	var record domain.DownloadRecord
	err := r.db.First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindAll returns records newest first. Besides column filters it accepts
// "limit" and "offset".
func (r *SQLiteHistoryRepository) FindAll(filters map[string]interface{}) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	query := r.db

	for key, value := range filters {
		switch {
		case key == "limit":
			if n, ok := value.(int); ok && n > 0 {
				query = query.Limit(n)
			}
		case key == "offset":
			if n, ok := value.(int); ok && n > 0 {
				query = query.Offset(n)
			}
		case allowedFilters[key]:
			query = query.Where(fmt.Sprintf("%s = ?", key), value)
		default:
			return nil, fmt.Errorf("unsupported filter: %s", key)
		}
	}

	err := query.Order("started_at DESC").Find(&records).Error
	return records, err
}

// Count returns the total number of records
func (r *SQLiteHistoryRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&domain.DownloadRecord{}).Count(&count).Error
	return count, err
}

// GetStats returns download statistics
func (r *SQLiteHistoryRepository) GetStats() (*domain.DownloadStats, error) {
	stats := &domain.DownloadStats{ByPlatform: make(map[string]int64)}

	if err := r.db.Model(&domain.DownloadRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}

	statusCounts := []struct {
		Status domain.DownloadStatus
		Count  int64
	}{}
	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&statusCounts).Error; err != nil {
		return nil, err
	}
	for _, sc := range statusCounts {
		switch sc.Status {
		case domain.StatusProcessing:
			stats.Processing = sc.Count
		case domain.StatusCompleted:
			stats.Completed = sc.Count
		case domain.StatusFailed:
			stats.Failed = sc.Count
		}
	}

	platformCounts := []struct {
		Platform string
		Count    int64
	}{}
	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("platform, count(*) as count").
		Group("platform").
		Scan(&platformCounts).Error; err != nil {
		return nil, err
	}
	for _, pc := range platformCounts {
		stats.ByPlatform[pc.Platform] = pc.Count
	}

	var totalBytes struct{ Total int64 }
	if err := r.db.Model(&domain.DownloadRecord{}).
		Select("COALESCE(SUM(size_bytes), 0) as total").
		Where("status = ?", domain.StatusCompleted).
		Scan(&totalBytes).Error; err != nil {
		return nil, err
	}
	stats.TotalBytes = totalBytes.Total

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
