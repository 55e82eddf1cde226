package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/satriahrh/arunika/avatar/domain"
)

type fakeLLM struct {
	raw   string
	err   error
	calls atomic.Int32

	mu       sync.Mutex
	lastUser string
}

func (f *fakeLLM) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastUser = userText
	f.mu.Unlock()
	return f.raw, f.err
}

// echoLLM replies with one message repeating the user text
type echoLLM struct{}

func (echoLLM) Complete(ctx context.Context, systemPrompt, userText string) (string, error) {
	return fmt.Sprintf(`[{"text":%q,"facialExpression":"smile","animation":"Talking_0"}]`, userText), nil
}

// fakeTTS writes "mp3:<text>" so tests can tell audio apart
type fakeTTS struct {
	failOn string
	calls  atomic.Int32
}

func (f *fakeTTS) SynthesizeToFile(ctx context.Context, text, destPath string) error {
	f.calls.Add(1)
	if f.failOn != "" && text == f.failOn {
		return fmt.Errorf("%w: synthetic failure", domain.ErrUpstreamCall)
	}
	return os.WriteFile(destPath, []byte("mp3:"+text), 0o644)
}

type fakeTranscoder struct {
	err   error
	calls atomic.Int32
}

func (f *fakeTranscoder) Transcode(ctx context.Context, inputPath, outputPath string) error {
	f.calls.Add(1)
	if f.err != nil {
		return f.err
	}
	data, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrArtifactIO, err)
	}
	return os.WriteFile(outputPath, append([]byte("wav:"), data...), 0o644)
}

type fakeAssets struct {
	missing bool
}

func (f *fakeAssets) Load(ctx context.Context, set string, index int) ([]byte, domain.LipSync, error) {
	if f.missing {
		return nil, nil, fmt.Errorf("%w: %s_%d.wav not found", domain.ErrArtifactIO, set, index)
	}
	return []byte(fmt.Sprintf("%s_%d", set, index)), domain.LipSync{{Value: domain.VisemeRest, Start: 0, End: 0.1}}, nil
}

type fakeCredentials struct {
	llm bool
	tts bool
}

func (f fakeCredentials) HasLLMCredentials() bool { return f.llm }
func (f fakeCredentials) HasTTSCredentials() bool { return f.tts }

var errBoom = errors.New("boom")
