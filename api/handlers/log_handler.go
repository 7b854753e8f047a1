package handlers

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yourusername/vidgrab-go/pkg/logger"
)

const (
	defaultLogLimit = 100
	maxLogLimit     = 1000
)

// LogHandler handles log-related requests
type LogHandler struct {
	logReader *logger.LogReader
}

// NewLogHandler creates a new log handler
func NewLogHandler(logsDir string) *LogHandler {
	return &LogHandler{
		logReader: logger.NewLogReader(logsDir),
	}
}

// GetCategories handles GET /api/logs/categories
func (h *LogHandler) GetCategories(c *gin.Context) {
	categories := logger.Categories()
	dates := make(map[logger.LogCategory][]string, len(categories))
	for _, category := range categories {
		available, err := h.logReader.AvailableDates(category)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list log files"})
			return
		}
		dates[category] = available
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"dates":      dates,
	})
}

// GetLogs handles GET /api/logs/:category
func (h *LogHandler) GetLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	entries, err := h.logReader.ReadLogs(category, date, logLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"date":     date.Format("2006-01-02"),
		"count":    len(entries),
		"entries":  entries,
	})
}

// SearchLogs handles GET /api/logs/:category/search
func (h *LogHandler) SearchLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}

	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'q' is required"})
		return
	}

	date, ok := dateQuery(c)
	if !ok {
		return
	}

	entries, err := h.logReader.SearchLogs(category, date, query, logLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to search logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"category": category,
		"query":    query,
		"count":    len(entries),
		"entries":  entries,
	})
}

// ExportLogs handles GET /api/logs/:category/export
func (h *LogHandler) ExportLogs(c *gin.Context) {
	category, ok := categoryParam(c)
	if !ok {
		return
	}
	date, ok := dateQuery(c)
	if !ok {
		return
	}

	logPath := h.logReader.GetLogPath(category, date)
	if _, err := os.Stat(logPath); errors.Is(err, os.ErrNotExist) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no log file for that date"})
		return
	}

	c.FileAttachment(logPath, string(category)+"-"+date.Format("20060102")+".log")
}

// categoryParam validates the :category path parameter, writing a 400 on failure
func categoryParam(c *gin.Context) (logger.LogCategory, bool) {
	category := logger.LogCategory(c.Param("category"))
	if !logger.ValidCategory(category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return "", false
	}
	return category, true
}

// dateQuery parses the optional date=YYYY-MM-DD query, defaulting to today
func dateQuery(c *gin.Context) (time.Time, bool) {
	dateStr := c.Query("date")
	if dateStr == "" {
		return time.Now(), true
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date format, use YYYY-MM-DD"})
		return time.Time{}, false
	}
	return date, true
}

func logLimit(c *gin.Context) int {
	limit := queryInt(c, "limit", defaultLogLimit)
	if limit > maxLogLimit {
		limit = maxLogLimit
	}
	return limit
}
