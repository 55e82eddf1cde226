package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

const (
	defaultBinary  = "ffmpeg"
	defaultTimeout = 20 * time.Second
	maxStderrTail  = 2 << 10
)

// FFmpegConfig holds configuration for the FFmpeg transcoder
type FFmpegConfig struct {
	Binary  string        // Optional: path to the ffmpeg executable (default: "ffmpeg")
	Timeout time.Duration // Optional: upper bound for one conversion (default: 20s)
}

// FFmpeg converts audio files by running the ffmpeg executable.
// The output container is chosen by ffmpeg from the output file extension.
type FFmpeg struct {
	binary  string
	timeout time.Duration
	logger  *zap.Logger
}

var _ repositories.Transcoder = (*FFmpeg)(nil)

// NewFFmpeg creates a transcoder, applying defaults where needed
func NewFFmpeg(config FFmpegConfig, logger *zap.Logger) *FFmpeg {
	binary := config.Binary
	if binary == "" {
		binary = defaultBinary
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &FFmpeg{
		binary:  binary,
		timeout: timeout,
		logger:  logger,
	}
}

// Transcode runs `ffmpeg -y -i inputPath outputPath`. It is never retried.
func (f *FFmpeg) Transcode(ctx context.Context, inputPath, outputPath string) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("%w: transcoder input: %v", domain.ErrArtifactIO, err)
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(ctx, f.binary, "-y", "-loglevel", "error", "-i", inputPath, outputPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: ffmpeg timed out after %s: %w", domain.ErrUpstreamCall, f.timeout, context.DeadlineExceeded)
		}
		detail := strings.TrimSpace(stderr.String())
		if len(detail) > maxStderrTail {
			detail = strings.TrimSpace(detail[len(detail)-maxStderrTail:])
		}
		if detail == "" {
			detail = err.Error()
		}
		return fmt.Errorf("%w: ffmpeg failed: %s", domain.ErrUpstreamCall, detail)
	}

	f.logger.Debug("Transcoding done",
		zap.String("input", inputPath),
		zap.String("output", outputPath),
		zap.Duration("took", time.Since(start)))
	return nil
}
