// Command enrich renders the canned replies served when input or API keys are
// missing. It runs the same enrichment step as the live path and stores
// <set>_<index>.wav and <set>_<index>.json in ASSETS_DIR.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/adapters/assets"
	"github.com/satriahrh/arunika/avatar/adapters/transcoder"
	"github.com/satriahrh/arunika/avatar/adapters/tts"
	"github.com/satriahrh/arunika/avatar/internal/config"
	"github.com/satriahrh/arunika/avatar/internal/lipsync"
	"github.com/satriahrh/arunika/avatar/internal/workspace"
	"github.com/satriahrh/arunika/avatar/usecase"
)

func main() {
	set := flag.String("set", "", "canned set to render (intro, api); empty renders every set")
	listVoices := flag.Bool("list-voices", false, "print the ElevenLabs voices available to the API key and exit")
	flag.Parse()

	// Create logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}
	if !cfg.HasTTSCredentials() {
		logger.Fatal("ELEVEN_LABS_API_KEY environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	textToSpeech, err := tts.NewElevenLabsTTS(tts.ElevenLabsConfig{
		APIKey:       cfg.TTS.APIKey,
		APIBaseURL:   cfg.TTS.APIBaseURL,
		VoiceID:      cfg.TTS.VoiceID,
		ModelID:      cfg.TTS.ModelID,
		OutputFormat: cfg.TTS.OutputFormat,
		Stability:    cfg.TTS.Stability,
		Clarity:      cfg.TTS.Clarity,
		Timeout:      cfg.TTS.Timeout,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	if *listVoices {
		voices, err := textToSpeech.GetAvailableVoices(ctx)
		if err != nil {
			logger.Fatal("Failed to list voices", zap.Error(err))
		}
		for _, v := range voices {
			fmt.Printf("%s\t%s\t%s\n", v.VoiceID, v.Name, v.Category)
		}
		return
	}

	sets := []string{*set}
	if *set == "" {
		sets = sets[:0]
		for name := range usecase.CannedReplies {
			sets = append(sets, name)
		}
		sort.Strings(sets)
	}

	scratch, err := os.MkdirTemp("", "avatar-enrich-")
	if err != nil {
		logger.Fatal("Failed to create scratch directory", zap.Error(err))
	}
	defer os.RemoveAll(scratch)

	manager, err := workspace.NewManager(scratch, false, logger)
	if err != nil {
		logger.Fatal("Failed to create workspace", zap.Error(err))
	}

	var mapperOptions []lipsync.Option
	if cfg.Pipeline.RoundedO {
		mapperOptions = append(mapperOptions, lipsync.WithRoundedO())
	}
	enricher := usecase.NewEnricher(
		textToSpeech,
		transcoder.NewFFmpeg(transcoder.FFmpegConfig{Binary: cfg.Pipeline.FFmpegPath, Timeout: cfg.Pipeline.TranscodeTimeout}, logger),
		lipsync.NewMapper(mapperOptions...),
		logger,
	)

	if err := os.MkdirAll(cfg.Pipeline.AssetsDir, 0o755); err != nil {
		logger.Fatal("Failed to create assets directory", zap.Error(err))
	}

	start := time.Now()
	for _, name := range sets {
		if err := render(ctx, enricher, manager, cfg.Pipeline.AssetsDir, name); err != nil {
			logger.Fatal("Failed to render canned set", zap.String("set", name), zap.Error(err))
		}
	}

	logger.Info("Canned assets rendered",
		zap.Strings("sets", sets),
		zap.String("assetsDir", cfg.Pipeline.AssetsDir),
		zap.Duration("took", time.Since(start)))
}

func render(ctx context.Context, enricher *usecase.Enricher, manager *workspace.Manager, assetsDir, set string) error {
	drafts, ok := usecase.CannedReplies[set]
	if !ok {
		return fmt.Errorf("unknown canned set %q", set)
	}

	scope, err := manager.Open("canned-" + set)
	if err != nil {
		return err
	}
	defer scope.Close()

	for i, draft := range drafts {
		_, cues, err := enricher.Enrich(ctx, scope, i, draft.Text)
		if err != nil {
			return fmt.Errorf("message %d: %w", i, err)
		}

		wav, err := os.ReadFile(scope.Path(i, "wav"))
		if err != nil {
			return fmt.Errorf("failed to read transcoded audio: %w", err)
		}
		if err := os.WriteFile(filepath.Join(assetsDir, assets.Name(set, i, "wav")), wav, 0o644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}

		data, err := json.MarshalIndent(cues, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode lipsync: %w", err)
		}
		if err := os.WriteFile(filepath.Join(assetsDir, assets.Name(set, i, "json")), data, 0o644); err != nil {
			return fmt.Errorf("failed to write lipsync: %w", err)
		}
	}
	return nil
}
