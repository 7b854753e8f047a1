package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidgrab-go/api"
	"github.com/yourusername/vidgrab-go/internal/app"
	"github.com/yourusername/vidgrab-go/internal/domain"
	"github.com/yourusername/vidgrab-go/internal/infrastructure"
	"github.com/yourusername/vidgrab-go/pkg/logger"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "1.0.0"

const (
	probeTimeout    = 15 * time.Second
	shutdownTimeout = 30 * time.Second
)

var (
	configPath = flag.String("config", "", "Path to config file")
	daemon     = flag.Bool("daemon", false, "Detach and run the server in the background")
)

func main() {
	flag.Parse()

	if *daemon {
		startAsDaemon()
		return
	}

	if err := runServer(); err != nil {
		fmt.Fprintf(os.Stderr, "vidgrab-server: %v\n", err)
		os.Exit(1)
	}
}

// startAsDaemon re-executes the binary detached from the terminal, without
// the -daemon flag
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	var args []string
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}
	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	detach(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open %s: %v\n", os.DevNull, err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
}

func runServer() error {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	events, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize log files: %w", err)
	}
	defer events.Close()

	base, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := events.Attach(base)
	defer log.Sync()

	log.Info("Starting vidgrab server",
		zap.String("version", version),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("downloads_dir", config.Download.DownloadsDir))

	clk := clock.New()
	stager := app.NewStager(&config.Download, clk, log)
	if err := stager.Init(); err != nil {
		return err
	}
	if config.Download.SweepOnStart {
		stager.Sweep()
	}

	var history domain.HistoryRepository
	if config.History.Enabled {
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
		if err != nil {
			return fmt.Errorf("failed to initialize history: %w", err)
		}
		defer repo.Close()
		history = repo
	}

	var notifier domain.Notifier
	if config.Notification.Enabled {
		notifier = infrastructure.NewNotificationService(&config.Notification, log)
	}

	youtube := infrastructure.NewYouTubeClient(&config.YouTube)
	extractor := infrastructure.NewYTDLPExtractor(&config.Tools, config.Download.LogsDir, log)
	transcoder := infrastructure.NewFFmpegTranscoder(&config.Tools, log)

	resolver := app.NewResolver(youtube, extractor, config.Download.ToolTimeout, log)
	orchestrator := app.NewOrchestrator(app.OrchestratorDeps{
		YouTube:    youtube,
		Extractor:  extractor,
		Transcoder: transcoder,
		Stager:     stager,
		History:    history,
		Notifier:   notifier,
		Events:     events,
		Clock:      clk,
	}, &config.Download, log)
	prober := app.NewProber(extractor, transcoder, probeTimeout, log)

	availability := prober.Probe(context.Background())
	if !availability.ExtractorInstalled {
		log.Warn("yt-dlp not found, only YouTube is fully supported", zap.String("binary", config.Tools.YTDLPBinary))
	}
	if !availability.ConverterInstalled {
		log.Warn("ffmpeg not found, YouTube MP3 downloads will fail", zap.String("binary", config.Tools.FFmpegBinary))
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.SetupRouter(api.RouterDeps{
		Resolver:   resolver,
		Downloader: orchestrator,
		Prober:     prober,
		History:    history,
		Events:     events,
		Config:     config,
		Logger:     log,
		Version:    version,
	})

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		log.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("failed to start server: %w", err)
	}

	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	// Staged files still waiting for their cleanup timer are removed now
	stager.Flush()

	log.Info("Server exited")
	return nil
}
