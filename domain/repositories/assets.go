package repositories

import (
	"context"

	"github.com/satriahrh/arunika/avatar/domain"
)

// CannedAssets reads the pre-recorded audio and lip-sync pairs used by fallback replies
type CannedAssets interface {
	// Load returns the raw audio bytes and decoded lip-sync of set_<index>
	Load(ctx context.Context, set string, index int) ([]byte, domain.LipSync, error)
}
