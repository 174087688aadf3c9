package services

import (
	"context"
	"log/slog"
)

// ModerationService owns the kick-on-zero-hearts rule and the ledger cleanup
// that follows a confirmed removal.
type ModerationService struct {
	ledger Ledger
	logger *slog.Logger
}

func NewModerationService(ledger Ledger, logger *slog.Logger) *ModerationService {
	return &ModerationService{ledger: ledger, logger: logger}
}

// ShouldRemove is true iff the member is out of hearts and not exempt.
func (m *ModerationService) ShouldRemove(hearts int, isExempt bool) bool {
	return hearts <= 0 && !isExempt
}

// ConfirmRemoval cascades the profile and flag-history delete after the
// caller reports the member was actually removed from the guild. A failed
// removal must never reach here; the decision is simply re-evaluated on the
// next qualifying event.
func (m *ModerationService) ConfirmRemoval(ctx context.Context, userKey string) error {
	if err := m.ledger.Delete(ctx, userKey); err != nil {
		m.logger.Warn("removal confirmed but ledger cleanup failed", "user_key", userKey, "error", err)
		return err
	}
	m.logger.Info("profile and flag history deleted after removal", "user_key", userKey)
	return nil
}
