package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
	"github.com/satriahrh/arunika/avatar/internal/lipsync"
	"github.com/satriahrh/arunika/avatar/internal/workspace"
)

// Enricher attaches audio and lip-sync to one reply message
type Enricher struct {
	tts        repositories.TextToSpeech
	transcoder repositories.Transcoder
	mapper     *lipsync.Mapper
	logger     *zap.Logger
}

// NewEnricher creates an Enricher
func NewEnricher(tts repositories.TextToSpeech, transcoder repositories.Transcoder, mapper *lipsync.Mapper, logger *zap.Logger) *Enricher {
	if mapper == nil {
		mapper = lipsync.NewMapper()
	}
	return &Enricher{
		tts:        tts,
		transcoder: transcoder,
		mapper:     mapper,
		logger:     logger,
	}
}

// Enrich synthesizes speech for text, normalizes it to wav, derives the viseme timeline
// and persists it, all as message_<index>.* inside scope. It returns the base64 of the
// synthesized audio and the timeline. Nothing is returned unless every step succeeded.
func (e *Enricher) Enrich(ctx context.Context, scope *workspace.Scope, index int, text string) (string, domain.LipSync, error) {
	start := time.Now()
	logger := e.logger.With(zap.String("requestID", scope.RequestID()), zap.Int("index", index))

	mp3Path := scope.Path(index, "mp3")
	wavPath := scope.Path(index, "wav")
	jsonPath := scope.Path(index, "json")

	var cues domain.LipSync
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := e.tts.SynthesizeToFile(gctx, text, mp3Path); err != nil {
			return fmt.Errorf("text to speech failed: %w", err)
		}
		if err := e.transcoder.Transcode(gctx, mp3Path, wavPath); err != nil {
			return fmt.Errorf("transcode failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		cues = e.mapper.Synthesize(text)
		data, err := json.Marshal(cues)
		if err != nil {
			return fmt.Errorf("%w: failed to encode lipsync: %v", domain.ErrArtifactIO, err)
		}
		if err := os.WriteFile(jsonPath, data, 0o644); err != nil {
			return fmt.Errorf("%w: failed to write lipsync: %v", domain.ErrArtifactIO, err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Message enrichment failed", zap.Error(err))
		return "", nil, err
	}

	audio, err := os.ReadFile(mp3Path)
	if err != nil {
		return "", nil, fmt.Errorf("%w: failed to read synthesized audio: %v", domain.ErrArtifactIO, err)
	}

	logger.Info("Message enriched",
		zap.Int("audioBytes", len(audio)),
		zap.Int("cues", len(cues)),
		zap.Duration("took", time.Since(start)))
	return base64.StdEncoding.EncodeToString(audio), cues, nil
}
