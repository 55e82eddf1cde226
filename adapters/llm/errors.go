package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/satriahrh/arunika/avatar/domain"
)

// upstreamError tags a provider failure, keeping deadlines matchable
func upstreamError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s timed out: %w", domain.ErrUpstreamCall, provider, context.DeadlineExceeded)
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrUpstreamCall, provider, err)
}
