package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nlowen/captiond/internal/api"
	"github.com/nlowen/captiond/internal/config"
	"github.com/nlowen/captiond/internal/jobs"
	"github.com/nlowen/captiond/internal/logger"
	"github.com/nlowen/captiond/internal/service"
	"github.com/nlowen/captiond/internal/transcribe"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to config file (default: ./config/captiond.yaml)")
	port := flag.Int("port", 8080, "Port to listen on")
	uploadPath := flag.String("uploads", "", "Override upload path from config")
	flag.Parse()

	// Load .env if present (API keys live there in development)
	_ = godotenv.Load()

	// Determine config path
	cfgPath := *configPath
	if cfgPath == "" {
		if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
			cfgPath = envPath
		} else {
			cfgPath = "config/captiond.yaml"
		}
	}

	// Load config
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// Initialize logger with default level for this warning
		logger.Init("info")
		logger.Warn("Could not load config", "path", cfgPath, "error", err)
		cfg = config.DefaultConfig()
	}

	// Initialize logger with configured level
	logger.Init(cfg.LogLevel)

	// Override with environment variables
	if envUploads := os.Getenv("UPLOAD_PATH"); envUploads != "" {
		cfg.UploadPath = envUploads
	}
	if *uploadPath != "" {
		cfg.UploadPath = *uploadPath
	}
	if envBackend := os.Getenv("TRANSCRIBER"); envBackend != "" {
		cfg.Transcriber = envBackend
	}

	// Ensure upload directory exists
	if err := os.MkdirAll(cfg.UploadPath, 0755); err != nil {
		logger.Error("Could not create upload directory", "path", cfg.UploadPath, "error", err)
		os.Exit(1)
	}

	// Select the speech-to-text backend
	var transcriber jobs.Transcriber
	switch cfg.Transcriber {
	case "whisper":
		transcriber = transcribe.NewWhisper(cfg.WhisperPath, cfg.WhisperModel, cfg.FFmpegPath)
	case "openai":
		client, err := transcribe.NewOpenAI(cfg.OpenAIModel)
		if err != nil {
			logger.Error("Failed to initialize OpenAI transcriber", "error", err)
			os.Exit(1)
		}
		transcriber = client
	default:
		logger.Error("Unknown transcriber backend", "transcriber", cfg.Transcriber)
		os.Exit(1)
	}

	// Initialize components
	store := jobs.NewStore()
	runner := jobs.NewRunner(store, transcriber)
	svc := service.New(store, runner, transcriber, cfg.DefaultLanguage)

	handler := api.NewHandler(svc, store, cfg)
	router := api.NewRouter(handler)

	fmt.Printf("  captiond — audio transcription to SRT\n\n")
	fmt.Printf("  Config:       %s\n", cfgPath)
	fmt.Printf("  Uploads:      %s\n", cfg.UploadPath)
	fmt.Printf("  Transcriber:  %s\n", cfg.Transcriber)
	if cfg.Transcriber == "whisper" {
		fmt.Printf("  Whisper:      %s (%s)\n", cfg.WhisperPath, cfg.WhisperModel)
		fmt.Printf("  FFmpeg:       %s\n", cfg.FFmpegPath)
	} else {
		fmt.Printf("  Model:        %s\n", cfg.OpenAIModel)
	}
	fmt.Printf("  Language:     %s (default)\n", cfg.DefaultLanguage)
	fmt.Printf("\n  Starting server on port %d\n\n", *port)

	logger.Info("captiond started", "transcriber", cfg.Transcriber, "port", *port)

	// Set up graceful shutdown
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", *port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received")
		runner.Shutdown(time.Duration(cfg.ShutdownGraceSecs) * time.Second)
		server.Close()
	}()

	// Start server
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
