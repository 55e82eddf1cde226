// Package workspace hands out per-request directories for transient pipeline artifacts.
// Artifact paths derive from the request ID and the message index, so concurrent
// requests never touch each other's files.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/satriahrh/arunika/avatar/domain"
)

const scopePrefix = "req-"

// Manager creates request scopes under a base directory
type Manager struct {
	baseDir string
	keep    bool
	logger  *zap.Logger
}

// NewManager creates the base directory if needed.
// When keep is true, closed scopes stay on disk until the Janitor removes them.
func NewManager(baseDir string, keep bool, logger *zap.Logger) (*Manager, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("artifact base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: failed to create artifact directory: %v", domain.ErrArtifactIO, err)
	}
	return &Manager{
		baseDir: baseDir,
		keep:    keep,
		logger:  logger,
	}, nil
}

// BaseDir returns the directory holding every scope
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Scope is the artifact namespace of one request
type Scope struct {
	requestID string
	dir       string
	keep      bool
	logger    *zap.Logger
}

// Open creates a fresh directory for requestID
func (m *Manager) Open(requestID string) (*Scope, error) {
	dir, err := os.MkdirTemp(m.baseDir, scopePrefix+sanitize(requestID)+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request scope: %v", domain.ErrArtifactIO, err)
	}

	m.logger.Debug("Opened request scope",
		zap.String("requestID", requestID),
		zap.String("dir", dir))

	return &Scope{
		requestID: requestID,
		dir:       dir,
		keep:      m.keep,
		logger:    m.logger,
	}, nil
}

// RequestID returns the ID the scope was opened for
func (s *Scope) RequestID() string {
	return s.requestID
}

// Dir returns the scope directory
func (s *Scope) Dir() string {
	return s.dir
}

// Path returns the artifact path of message index with the given extension
func (s *Scope) Path(index int, ext string) string {
	return filepath.Join(s.dir, fmt.Sprintf("message_%d.%s", index, strings.TrimPrefix(ext, ".")))
}

// Close removes the scope directory unless artifacts are kept
func (s *Scope) Close() error {
	if s.keep {
		s.logger.Debug("Keeping request artifacts",
			zap.String("requestID", s.requestID),
			zap.String("dir", s.dir))
		return nil
	}
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("%w: failed to remove request scope: %v", domain.ErrArtifactIO, err)
	}
	return nil
}

// sanitize keeps request IDs from escaping the base directory
func sanitize(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '_'
		}
	}, id)
}
