package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab-go/api/handlers"
	"github.com/yourusername/vidgrab-go/api/middleware"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"github.com/yourusername/vidgrab-go/pkg/logger"
)

// RouterDeps are the services the HTTP layer exposes. History and Events
// are optional.
type RouterDeps struct {
	Resolver   handlers.MetadataResolver
	Downloader handlers.Downloader
	Prober     handlers.AvailabilityProber
	History    domain.HistoryRepository
	Events     *logger.MultiLogger
	Config     *domain.Config
	Logger     *zap.Logger
	Version    string
}

// SetupRouter builds the gin engine with every /api route
func SetupRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	access, errLog := deps.Logger, deps.Logger
	if deps.Events != nil {
		access, errLog = deps.Events.Access(), deps.Events.Error()
	}

	router.Use(middleware.Logger(access, errLog))
	router.Use(middleware.Recovery(deps.Logger))
	router.Use(middleware.CORS(&deps.Config.CORS))

	api := router.Group("/api")
	{
		healthHandler := handlers.NewHealthHandler(deps.Prober, deps.Version)
		api.GET("/health", healthHandler.Health)
		api.GET("/check-ytdlp", healthHandler.CheckTools)

		mediaHandler := handlers.NewMediaHandler(deps.Resolver, deps.Downloader, deps.Logger)
		api.POST("/info", mediaHandler.GetInfo)
		api.POST("/download", middleware.RateLimit(&deps.Config.RateLimit), mediaHandler.Download)

		if deps.History != nil {
			historyHandler := handlers.NewHistoryHandler(deps.History, deps.Logger)
			history := api.Group("/history")
			{
				history.GET("", historyHandler.ListHistory)
				history.GET("/stats", historyHandler.GetStats)
				history.DELETE("/:id", historyHandler.DeleteRecord)
			}
		}

		logsDir := deps.Config.Download.LogsDir
		logHandler := handlers.NewLogHandler(logsDir)
		wsHandler := handlers.NewLogWebSocketHandler(logsDir, deps.Logger)
		logs := api.Group("/logs")
		{
			logs.GET("/categories", logHandler.GetCategories)
			logs.GET("/ws", wsHandler.HandleWebSocket)
			logs.GET("/:category", logHandler.GetLogs)
			logs.GET("/:category/search", logHandler.SearchLogs)
			logs.GET("/:category/export", logHandler.ExportLogs)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})

	return router
}
