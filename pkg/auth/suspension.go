package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/contextauth/pkg/domain"
)

// DefaultSuspensionDuration is how long a high-risk login locks the account.
const DefaultSuspensionDuration = 24 * time.Hour

// SuspensionController reads and writes the account suspension marker.
type SuspensionController struct {
	accounts AccountStore
	duration time.Duration
	now      func() time.Time
}

// NewSuspensionController creates a new suspension controller.
func NewSuspensionController(accounts AccountStore, duration time.Duration) *SuspensionController {
	if duration <= 0 {
		duration = DefaultSuspensionDuration
	}
	return &SuspensionController{
		accounts: accounts,
		duration: duration,
		now:      time.Now,
	}
}

// Duration returns the suspension length.
func (c *SuspensionController) Duration() time.Duration {
	return c.duration
}

// IsSuspended reports whether account is suspended now. An expired marker
// counts as not suspended and is left in place.
func (c *SuspensionController) IsSuspended(account *domain.Account) (bool, *time.Time) {
	return account.IsSuspended(c.now())
}

// Suspend marks the account suspended until now plus the configured duration
// and returns that instant. A failed write is returned as ErrStorage so the
// caller never proceeds as if the account were locked.
func (c *SuspensionController) Suspend(ctx context.Context, accountID uuid.UUID) (time.Time, error) {
	until := c.now().Add(c.duration).UTC()
	if err := c.accounts.SetSuspendedUntil(ctx, accountID, &until); err != nil {
		return time.Time{}, fmt.Errorf("%w: failed to suspend account: %w", domain.ErrStorage, err)
	}
	return until, nil
}

// Clear removes the suspension marker.
func (c *SuspensionController) Clear(ctx context.Context, accountID uuid.UUID) error {
	if err := c.accounts.SetSuspendedUntil(ctx, accountID, nil); err != nil {
		return fmt.Errorf("%w: failed to clear suspension: %w", domain.ErrStorage, err)
	}
	return nil
}
