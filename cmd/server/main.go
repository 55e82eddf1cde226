package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/satriahrh/arunika/avatar/adapters/assets"
	"github.com/satriahrh/arunika/avatar/adapters/hosted"
	"github.com/satriahrh/arunika/avatar/adapters/llm"
	"github.com/satriahrh/arunika/avatar/adapters/transcoder"
	"github.com/satriahrh/arunika/avatar/adapters/tts"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/api"
	"github.com/satriahrh/arunika/avatar/internal/config"
	"github.com/satriahrh/arunika/avatar/internal/lipsync"
	"github.com/satriahrh/arunika/avatar/internal/websocket"
	"github.com/satriahrh/arunika/avatar/internal/workspace"
	"github.com/satriahrh/arunika/avatar/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	// Initialize logger
	logger, err := newLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize adapters
	var languageModel repositories.LanguageModel
	var textToSpeech repositories.TextToSpeech
	if cfg.HasLLMCredentials() && cfg.HasTTSCredentials() {
		languageModel, err = llm.NewFromConfig(ctx, cfg.LLM, logger.Named("llm"))
		if err != nil {
			logger.Fatal("Failed to create language model", zap.Error(err))
		}
		textToSpeech, err = tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
			APIKey:       cfg.TTS.APIKey,
			APIBaseURL:   cfg.TTS.APIBaseURL,
			VoiceID:      cfg.TTS.VoiceID,
			ModelID:      cfg.TTS.ModelID,
			OutputFormat: cfg.TTS.OutputFormat,
			Stability:    cfg.TTS.Stability,
			Clarity:      cfg.TTS.Clarity,
			Timeout:      cfg.TTS.Timeout,
		}, logger.Named("tts"))
		if err != nil {
			logger.Fatal("Failed to create text to speech", zap.Error(err))
		}
	} else {
		logger.Warn("API keys missing, /chat will answer with the canned reminder")
	}

	var hostedModel repositories.HostedModel
	if cfg.HasHostedCredentials() {
		client, err := hosted.NewClient(hosted.Config{
			APIKey:      cfg.Hosted.APIKey,
			TokenURL:    cfg.Hosted.TokenURL,
			GenerateURL: cfg.Hosted.GenerateURL,
			ModelID:     cfg.Hosted.ModelID,
			ProjectID:   cfg.Hosted.ProjectID,
			Timeout:     cfg.Hosted.Timeout,
		}, logger.Named("hosted"))
		if err != nil {
			logger.Fatal("Failed to create hosted model client", zap.Error(err))
		}
		hostedModel = client
	}

	ffmpeg := transcoder.NewFFmpeg(transcoder.FFmpegConfig{
		Binary:  cfg.Pipeline.FFmpegPath,
		Timeout: cfg.Pipeline.TranscodeTimeout,
	}, logger.Named("ffmpeg"))

	artifacts, err := workspace.NewManager(cfg.Pipeline.ArtifactDir, cfg.Pipeline.KeepArtifacts, logger.Named("workspace"))
	if err != nil {
		logger.Fatal("Failed to prepare artifact directory", zap.Error(err))
	}
	janitor := workspace.NewJanitor(artifacts, cfg.Pipeline.ArtifactTTL, cfg.Pipeline.JanitorInterval, logger.Named("janitor"))
	janitor.Start()
	defer janitor.Stop()

	var mapperOptions []lipsync.Option
	if cfg.Pipeline.RoundedO {
		mapperOptions = append(mapperOptions, lipsync.WithRoundedO())
	}

	// Initialize usecase services
	enricher := usecase.NewEnricher(textToSpeech, ffmpeg, lipsync.NewMapper(mapperOptions...), logger.Named("enrich"))
	chatService := usecase.NewChatService(
		languageModel,
		assets.NewDirectory(cfg.Pipeline.AssetsDir, logger.Named("assets")),
		enricher,
		artifacts,
		cfg,
		llm.SystemPrompt(cfg.LLM.Persona),
		logger.Named("chat"),
	)

	// Initialize WebSocket hub with chat service
	hub := websocket.NewHub(chatService, cfg.RequestTimeout, cfg.CORSAllowedOrigins, logger.Named("hub"))
	go hub.Run(ctx)

	// Create Echo instance
	e := echo.New()
	api.SetupMiddleware(e, api.MiddlewareConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
	}, logger.Named("http"))
	api.InitRoutes(e, api.Dependencies{
		Chat:        chatService,
		Hosted:      hostedModel,
		Hub:         hub,
		FrontendURL: cfg.FrontendURL,
	}, logger)

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started",
		zap.String("port", cfg.Port),
		zap.String("llmProvider", cfg.LLM.Provider),
		zap.Bool("liveChat", languageModel != nil),
		zap.Bool("hostedModel", hostedModel != nil))

	// Wait for interrupt signal to gracefully shutdown the server
	<-ctx.Done()

	logger.Info("Server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zapConfig := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zapConfig = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	return zapConfig.Build()
}
