package workspace

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Janitor removes scope directories older than a TTL.
// It catches kept artifacts and scopes left behind by crashed requests.
type Janitor struct {
	manager  *Manager
	ttl      time.Duration
	interval time.Duration
	logger   *zap.Logger
	stopChan chan struct{}
	now      func() time.Time
}

// NewJanitor creates a janitor for the manager's base directory
func NewJanitor(manager *Manager, ttl, interval time.Duration, logger *zap.Logger) *Janitor {
	return &Janitor{
		manager:  manager,
		ttl:      ttl,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the background sweep
func (j *Janitor) Start() {
	go j.sweepLoop()
	j.logger.Info("Artifact janitor started",
		zap.Duration("ttl", j.ttl),
		zap.Duration("interval", j.interval))
}

// Stop stops the background sweep
func (j *Janitor) Stop() {
	close(j.stopChan)
	j.logger.Info("Artifact janitor stopped")
}

func (j *Janitor) sweepLoop() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-j.stopChan:
			return
		case <-ticker.C:
			j.Sweep()
		}
	}
}

// Sweep removes expired scopes once and returns how many were removed
func (j *Janitor) Sweep() int {
	entries, err := os.ReadDir(j.manager.baseDir)
	if err != nil {
		j.logger.Error("Failed to list artifact directory", zap.Error(err))
		return 0
	}

	cutoff := j.now().Add(-j.ttl)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), scopePrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}

		dir := filepath.Join(j.manager.baseDir, entry.Name())
		if err := os.RemoveAll(dir); err != nil {
			j.logger.Warn("Failed to remove expired scope", zap.String("dir", dir), zap.Error(err))
			continue
		}
		removed++
	}

	if removed > 0 {
		j.logger.Info("Artifact sweep completed", zap.Int("removed", removed))
	}
	return removed
}
