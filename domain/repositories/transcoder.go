package repositories

import "context"

// Transcoder converts an audio file from one container to another
type Transcoder interface {
	// Transcode produces (or overwrites) outputPath from inputPath
	Transcode(ctx context.Context, inputPath, outputPath string) error
}
