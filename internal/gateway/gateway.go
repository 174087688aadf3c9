package gateway

import (
	"context"
	"errors"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// The chat platform is an external collaborator. These interfaces are the
// seams where its client plugs in; the engine never talks to the platform
// directly.

var (
	// ErrRoleMissing is returned by SyncRole when the tier's role artifact
	// does not exist in the guild; the executor will try to recreate it once.
	ErrRoleMissing = errors.New("role artifact missing")

	// ErrRemoverNotConfigured is the default remover's answer; a removal that
	// cannot be executed leaves the ledger untouched and is re-evaluated on
	// the next qualifying event.
	ErrRemoverNotConfigured = errors.New("member remover not configured")
)

// Notifier delivers flag warnings and reward notices.
type Notifier interface {
	NotifyFlag(ctx context.Context, intent models.NotifyFlagIntent) error
	NotifyReward(ctx context.Context, intent models.NotifyRewardIntent) error
}

// RoleManager keeps platform role membership in line with resolved tiers.
type RoleManager interface {
	// SyncRole grants the tier role and removes the others. Returns
	// ErrRoleMissing when the role artifact does not exist.
	SyncRole(ctx context.Context, intent models.SyncRoleIntent) error

	// EnsureRole creates the tier's role artifact with its display color.
	EnsureRole(ctx context.Context, guildID, tier string, color int) error

	// GrantRoles hands out explicitly configured roles (exemption grants).
	GrantRoles(ctx context.Context, guildID, userID string, roles []string) error
}

// MemberRemover removes a member from the guild. Returning nil means the
// removal definitely happened.
type MemberRemover interface {
	Remove(ctx context.Context, intent models.RemoveMemberIntent) error
}
