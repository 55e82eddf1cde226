package transcoder

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
)

// fakeFFmpeg writes a shell script that mimics the ffmpeg argument layout
// (-y -loglevel error -i IN OUT) and runs body.
func fakeFFmpeg(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake needs a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "ffmpeg")
	script := "#!/bin/sh\nIN=\"$5\"\nOUT=\"$6\"\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake ffmpeg: %v", err)
	}
	return path
}

func writeInput(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "message_0.mp3")
	if err := os.WriteFile(path, []byte("mp3-bytes"), 0o644); err != nil {
		t.Fatalf("failed to write input: %v", err)
	}
	return path
}

func TestFFmpeg_Transcode(t *testing.T) {
	binary := fakeFFmpeg(t, `cp "$IN" "$OUT"`)
	f := NewFFmpeg(FFmpegConfig{Binary: binary}, zaptest.NewLogger(t))

	in := writeInput(t)
	out := filepath.Join(filepath.Dir(in), "message_0.wav")

	if err := f.Transcode(context.Background(), in, out); err != nil {
		t.Fatalf("Transcode failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if string(data) != "mp3-bytes" {
		t.Errorf("unexpected output %q", data)
	}
}

func TestFFmpeg_Transcode_MissingInput(t *testing.T) {
	f := NewFFmpeg(FFmpegConfig{Binary: "/nonexistent/ffmpeg"}, zaptest.NewLogger(t))

	err := f.Transcode(context.Background(), filepath.Join(t.TempDir(), "nope.mp3"), filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, domain.ErrArtifactIO) {
		t.Errorf("expected ErrArtifactIO, got %v", err)
	}
}

func TestFFmpeg_Transcode_NonZeroExit(t *testing.T) {
	binary := fakeFFmpeg(t, `echo "Invalid data found when processing input" >&2; exit 1`)
	f := NewFFmpeg(FFmpegConfig{Binary: binary}, zaptest.NewLogger(t))

	err := f.Transcode(context.Background(), writeInput(t), filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, domain.ErrUpstreamCall) {
		t.Fatalf("expected ErrUpstreamCall, got %v", err)
	}
	if want := "Invalid data found"; !strings.Contains(err.Error(), want) {
		t.Errorf("expected stderr tail %q in %q", want, err.Error())
	}
}

func TestFFmpeg_Transcode_MissingBinary(t *testing.T) {
	f := NewFFmpeg(FFmpegConfig{Binary: filepath.Join(t.TempDir(), "no-ffmpeg")}, zaptest.NewLogger(t))

	err := f.Transcode(context.Background(), writeInput(t), filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, domain.ErrUpstreamCall) {
		t.Errorf("expected ErrUpstreamCall, got %v", err)
	}
}

func TestFFmpeg_Transcode_Timeout(t *testing.T) {
	binary := fakeFFmpeg(t, `exec sleep 5`)
	f := NewFFmpeg(FFmpegConfig{Binary: binary, Timeout: 50 * time.Millisecond}, zaptest.NewLogger(t))

	err := f.Transcode(context.Background(), writeInput(t), filepath.Join(t.TempDir(), "out.wav"))
	if !errors.Is(err, domain.ErrUpstreamCall) {
		t.Fatalf("expected ErrUpstreamCall, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded in chain, got %v", err)
	}
}

func TestNewFFmpeg_Defaults(t *testing.T) {
	f := NewFFmpeg(FFmpegConfig{}, zaptest.NewLogger(t))

	if f.binary != defaultBinary {
		t.Errorf("expected binary %q, got %q", defaultBinary, f.binary)
	}
	if f.timeout != defaultTimeout {
		t.Errorf("expected timeout %s, got %s", defaultTimeout, f.timeout)
	}
}
