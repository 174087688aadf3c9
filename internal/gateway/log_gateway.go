package gateway

import (
	"context"
	"log/slog"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// LogNotifier and LogRoleManager are the standalone-mode implementations:
// they record what a platform client would have done. LogRemover refuses, so
// a zero-hearts decision without a real platform client never deletes ledger
// state.

type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) NotifyFlag(ctx context.Context, intent models.NotifyFlagIntent) error {
	n.Logger.Info("flag notice",
		"guild_id", intent.GuildID,
		"user_id", intent.UserID,
		"reasons", intent.Reasons,
		"deducted", intent.Deducted,
		"hearts_now", intent.HeartsNow,
	)
	return nil
}

func (n *LogNotifier) NotifyReward(ctx context.Context, intent models.NotifyRewardIntent) error {
	n.Logger.Info("reward notice",
		"guild_id", intent.GuildID,
		"user_id", intent.UserID,
		"amount", intent.Amount,
		"reason", intent.Reason,
		"hearts_after", intent.HeartsAfter,
	)
	return nil
}

type LogRoleManager struct {
	Logger *slog.Logger
}

func (m *LogRoleManager) SyncRole(ctx context.Context, intent models.SyncRoleIntent) error {
	m.Logger.Info("role sync",
		"guild_id", intent.GuildID,
		"user_id", intent.UserID,
		"tier", intent.Tier,
		"remove", intent.RemoveTiers,
	)
	return nil
}

func (m *LogRoleManager) EnsureRole(ctx context.Context, guildID, tier string, color int) error {
	m.Logger.Info("role ensure", "guild_id", guildID, "tier", tier, "color", color)
	return nil
}

func (m *LogRoleManager) GrantRoles(ctx context.Context, guildID, userID string, roles []string) error {
	m.Logger.Info("role grant", "guild_id", guildID, "user_id", userID, "roles", roles)
	return nil
}

type LogRemover struct {
	Logger *slog.Logger
}

func (r *LogRemover) Remove(ctx context.Context, intent models.RemoveMemberIntent) error {
	r.Logger.Warn("removal requested but no platform client is configured",
		"guild_id", intent.GuildID,
		"user_id", intent.UserID,
	)
	return ErrRemoverNotConfigured
}
