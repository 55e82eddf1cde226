package assets

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/internal/lipsync"
	"github.com/satriahrh/arunika/avatar/usecase"
)

func TestFilesystem_Load(t *testing.T) {
	fsys := fstest.MapFS{
		"intro_0.wav":  {Data: []byte("RIFF-fake")},
		"intro_0.json": {Data: []byte(`[{"value":"REST","start":0,"end":0.1},{"value":"A","start":0.1,"end":0.2}]`)},
		"api_1.wav":    {Data: []byte("RIFF-api")},
		"api_1.json":   {Data: []byte(`{not json`)},
		"intro_1.wav":  {Data: []byte("RIFF-only-audio")},
	}
	assets := NewFilesystem(fsys, zaptest.NewLogger(t))

	t.Run("reads audio and lipsync", func(t *testing.T) {
		audio, lipSync, err := assets.Load(context.Background(), "intro", 0)
		require.NoError(t, err)
		assert.Equal(t, []byte("RIFF-fake"), audio)
		assert.Equal(t, domain.LipSync{
			{Value: domain.VisemeRest, Start: 0, End: 0.1},
			{Value: domain.VisemeA, Start: 0.1, End: 0.2},
		}, lipSync)
	})

	t.Run("missing audio", func(t *testing.T) {
		_, _, err := assets.Load(context.Background(), "api", 0)
		assert.ErrorIs(t, err, domain.ErrArtifactIO)
	})

	t.Run("missing lipsync", func(t *testing.T) {
		_, _, err := assets.Load(context.Background(), "intro", 1)
		assert.ErrorIs(t, err, domain.ErrArtifactIO)
	})

	t.Run("malformed lipsync", func(t *testing.T) {
		_, _, err := assets.Load(context.Background(), "api", 1)
		assert.ErrorIs(t, err, domain.ErrArtifactIO)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := assets.Load(ctx, "intro", 0)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestName(t *testing.T) {
	assert.Equal(t, "api_1.json", Name("api", 1, "json"))
}

func TestShippedCannedAssetsMatchTheirTexts(t *testing.T) {
	assets := NewDirectory("../../audios", zaptest.NewLogger(t))

	for set, drafts := range usecase.CannedReplies {
		for i, draft := range drafts {
			audio, lipSync, err := assets.Load(context.Background(), set, i)
			require.NoError(t, err, "%s_%d", set, i)
			assert.Equal(t, "RIFF", string(audio[:4]), "%s_%d.wav should be a wav file", set, i)
			assert.NoError(t, lipsync.Validate(lipSync, draft.Text), "%s_%d.json", set, i)
		}
	}
}
