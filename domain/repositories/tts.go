package repositories

import "context"

// TextToSpeech abstracts text-to-speech services
type TextToSpeech interface {
	// SynthesizeToFile converts text to compressed audio written at destPath
	SynthesizeToFile(ctx context.Context, text, destPath string) error
}
