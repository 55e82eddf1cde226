package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
	"github.com/satriahrh/arunika/avatar/domain/repositories"
)

// Filesystem serves pre-rendered canned replies stored as <set>_<index>.wav
// and <set>_<index>.json pairs.
type Filesystem struct {
	fsys   fs.FS
	logger *zap.Logger
}

var _ repositories.CannedAssets = (*Filesystem)(nil)

// NewFilesystem reads assets from fsys
func NewFilesystem(fsys fs.FS, logger *zap.Logger) *Filesystem {
	return &Filesystem{fsys: fsys, logger: logger}
}

// NewDirectory reads assets from a directory on disk
func NewDirectory(dir string, logger *zap.Logger) *Filesystem {
	return NewFilesystem(os.DirFS(dir), logger.With(zap.String("assetsDir", dir)))
}

// Name is the file name for the given canned asset
func Name(set string, index int, ext string) string {
	return fmt.Sprintf("%s_%d.%s", set, index, ext)
}

// Load returns the raw audio bytes and the decoded lip-sync of one canned message
func (f *Filesystem) Load(ctx context.Context, set string, index int) ([]byte, domain.LipSync, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	audioName := Name(set, index, "wav")
	audio, err := fs.ReadFile(f.fsys, audioName)
	if err != nil {
		f.logger.Error("Failed to read canned audio", zap.String("file", audioName), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: failed to read %s: %v", domain.ErrArtifactIO, audioName, err)
	}

	lipSyncName := Name(set, index, "json")
	raw, err := fs.ReadFile(f.fsys, lipSyncName)
	if err != nil {
		f.logger.Error("Failed to read canned lipsync", zap.String("file", lipSyncName), zap.Error(err))
		return nil, nil, fmt.Errorf("%w: failed to read %s: %v", domain.ErrArtifactIO, lipSyncName, err)
	}

	var lipSync domain.LipSync
	if err := json.Unmarshal(raw, &lipSync); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to decode %s: %v", domain.ErrArtifactIO, lipSyncName, err)
	}

	return audio, lipSync, nil
}
