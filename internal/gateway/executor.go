package gateway

import (
	"context"
	"log/slog"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/metrics"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/services"
)

// Executor runs the intents the engine emits. Every intent gets its own
// error boundary: one failure is logged and counted, the rest still run, and
// nothing rolls back committed ledger state.
type Executor struct {
	notifier   Notifier
	roles      RoleManager
	remover    MemberRemover
	moderation *services.ModerationService
	logger     *slog.Logger
}

func NewExecutor(notifier Notifier, roles RoleManager, remover MemberRemover, moderation *services.ModerationService, logger *slog.Logger) *Executor {
	return &Executor{
		notifier:   notifier,
		roles:      roles,
		remover:    remover,
		moderation: moderation,
		logger:     logger,
	}
}

// Execute runs the intents in order, best effort.
func (x *Executor) Execute(ctx context.Context, intents []models.Intent) {
	for _, intent := range intents {
		if err := x.execute(ctx, intent); err != nil {
			metrics.IntentFailures.WithLabelValues(intent.Kind()).Inc()
			x.logger.Warn("intent execution failed", "kind", intent.Kind(), "error", err)
		}
	}
}

func (x *Executor) execute(ctx context.Context, intent models.Intent) error {
	switch it := intent.(type) {
	case models.NotifyFlagIntent:
		return x.notifier.NotifyFlag(ctx, it)

	case models.NotifyRewardIntent:
		return x.notifier.NotifyReward(ctx, it)

	case models.SyncRoleIntent:
		return x.syncRole(ctx, it)

	case models.GrantRolesIntent:
		return x.roles.GrantRoles(ctx, it.GuildID, it.UserID, it.Roles)

	case models.RemoveMemberIntent:
		return x.removeMember(ctx, it)

	default:
		x.logger.Warn("unknown intent kind ignored", "kind", intent.Kind())
		return nil
	}
}

// syncRole retries once after a best-effort recreation of a missing role
// artifact. Persistent failure is the caller's log line, not a blocker.
func (x *Executor) syncRole(ctx context.Context, intent models.SyncRoleIntent) error {
	err := x.roles.SyncRole(ctx, intent)
	if err == nil || err != ErrRoleMissing {
		return err
	}

	x.logger.Info("tier role missing, attempting recreation", "guild_id", intent.GuildID, "tier", intent.Tier)
	if err := x.roles.EnsureRole(ctx, intent.GuildID, intent.Tier, intent.TierColor); err != nil {
		return err
	}
	return x.roles.SyncRole(ctx, intent)
}

// removeMember confirms the ledger cascade only after the platform reports
// the member gone. A failed removal leaves the profile intact for the next
// qualifying event to retry.
func (x *Executor) removeMember(ctx context.Context, intent models.RemoveMemberIntent) error {
	if err := x.remover.Remove(ctx, intent); err != nil {
		return err
	}
	metrics.RemovalsExecuted.Inc()
	return x.moderation.ConfirmRemoval(ctx, intent.UserKey)
}
