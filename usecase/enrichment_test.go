package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/internal/lipsync"
	"github.com/satriahrh/arunika/avatar/internal/workspace"
)

func openScope(t *testing.T, keep bool) *workspace.Scope {
	t.Helper()
	manager, err := workspace.NewManager(t.TempDir(), keep, zaptest.NewLogger(t))
	require.NoError(t, err)
	scope, err := manager.Open("enrich-test")
	require.NoError(t, err)
	return scope
}

func TestEnricher_Enrich(t *testing.T) {
	tts := &fakeTTS{}
	transcoder := &fakeTranscoder{}
	enricher := NewEnricher(tts, transcoder, nil, zaptest.NewLogger(t))
	scope := openScope(t, true)

	audio, cues, err := enricher.Enrich(context.Background(), scope, 0, "Hi")
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(audio)
	require.NoError(t, err)
	assert.Equal(t, "mp3:Hi", string(decoded))
	assert.Equal(t, domain.LipSync{
		{Value: domain.VisemeRest, Start: 0, End: 0.1},
		{Value: domain.VisemeA, Start: 0.1, End: 0.2},
	}, cues)

	wav, err := os.ReadFile(scope.Path(0, "wav"))
	require.NoError(t, err)
	assert.Equal(t, "wav:mp3:Hi", string(wav))

	persisted, err := os.ReadFile(scope.Path(0, "json"))
	require.NoError(t, err)
	var stored domain.LipSync
	require.NoError(t, json.Unmarshal(persisted, &stored))
	assert.Equal(t, cues, stored)
}

func TestEnricher_Enrich_UsesMapperOptions(t *testing.T) {
	enricher := NewEnricher(&fakeTTS{}, &fakeTranscoder{}, lipsync.NewMapper(lipsync.WithRoundedO()), zaptest.NewLogger(t))

	_, cues, err := enricher.Enrich(context.Background(), openScope(t, false), 0, "go")
	require.NoError(t, err)
	require.Len(t, cues, 2)
	assert.Equal(t, domain.VisemeO, cues[1].Value)
}

func TestEnricher_Enrich_Failures(t *testing.T) {
	t.Run("tts failure skips transcoding", func(t *testing.T) {
		transcoder := &fakeTranscoder{}
		enricher := NewEnricher(&fakeTTS{failOn: "Hi"}, transcoder, nil, zaptest.NewLogger(t))

		audio, cues, err := enricher.Enrich(context.Background(), openScope(t, false), 0, "Hi")
		assert.ErrorIs(t, err, domain.ErrUpstreamCall)
		assert.Empty(t, audio)
		assert.Nil(t, cues)
		assert.EqualValues(t, 0, transcoder.calls.Load())
	})

	t.Run("transcoder failure", func(t *testing.T) {
		enricher := NewEnricher(&fakeTTS{}, &fakeTranscoder{err: errBoom}, nil, zaptest.NewLogger(t))

		audio, cues, err := enricher.Enrich(context.Background(), openScope(t, false), 0, "Hi")
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, audio)
		assert.Nil(t, cues)
	})

	t.Run("scope directory gone", func(t *testing.T) {
		scope := openScope(t, false)
		require.NoError(t, scope.Close())
		enricher := NewEnricher(&fakeTTS{}, &fakeTranscoder{}, nil, zaptest.NewLogger(t))

		_, _, err := enricher.Enrich(context.Background(), scope, 0, "Hi")
		assert.Error(t, err)
	})
}
