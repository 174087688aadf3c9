package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// MemberDirectory enumerates guild members so role-based exemption rules can
// be expanded to concrete subjects.
type MemberDirectory interface {
	MembersWithRole(ctx context.Context, guildID, roleID string) ([]models.Account, error)
}

// Reconciler applies exemption reconciliation: for every exempt subject it
// ensures a profile exists, raises hearts to the configured floor, refreshes
// the tier snapshot, and emits role-grant and role-sync intents. The whole
// pass is idempotent; floors already met are left alone.
type Reconciler struct {
	ledger         Ledger
	exemptions     *ExemptionRegistry
	tiers          *TierTable
	directory      MemberDirectory
	startingHearts int
	logger         *slog.Logger
}

func NewReconciler(ledger Ledger, exemptions *ExemptionRegistry, tiers *TierTable, directory MemberDirectory, startingHearts int, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		ledger:         ledger,
		exemptions:     exemptions,
		tiers:          tiers,
		directory:      directory,
		startingHearts: startingHearts,
		logger:         logger,
	}
}

// Reconcile runs one pass for a guild and returns the intents to execute.
// A failure on one subject is logged and skipped; the rest of the pass runs.
func (r *Reconciler) Reconcile(ctx context.Context, guildID string) ([]models.Intent, error) {
	var intents []models.Intent

	for _, rule := range r.exemptions.ReconciliationTargets() {
		switch rule.Kind {
		case models.ExemptByUser:
			out, err := r.applyToMember(ctx, guildID, models.Account{ID: rule.ID, Username: rule.ID}, rule)
			if err != nil {
				r.logger.Warn("reconciliation failed for user rule", "user_id", rule.ID, "error", err)
				continue
			}
			intents = append(intents, out...)

		case models.ExemptByRole:
			if r.directory == nil {
				r.logger.Warn("no member directory configured, skipping role rule", "role_id", rule.ID)
				continue
			}
			members, err := r.directory.MembersWithRole(ctx, guildID, rule.ID)
			if err != nil {
				r.logger.Warn("member enumeration failed for role rule", "role_id", rule.ID, "error", err)
				continue
			}
			for _, member := range members {
				out, err := r.applyToMember(ctx, guildID, member, rule)
				if err != nil {
					r.logger.Warn("reconciliation failed for role member", "role_id", rule.ID, "user_id", member.ID, "error", err)
					continue
				}
				intents = append(intents, out...)
			}
		}
	}

	return intents, nil
}

func (r *Reconciler) applyToMember(ctx context.Context, guildID string, member models.Account, rule models.ExemptionRule) ([]models.Intent, error) {
	userKey := models.UserKey(guildID, member.ID)

	profile, err := r.ledger.GetOrCreate(ctx, userKey, guildID, member.ID, member.Username, r.startingHearts)
	if err != nil {
		return nil, fmt.Errorf("reconciler: ensure profile: %w", err)
	}

	hearts := profile.Hearts
	if rule.Floor != nil {
		hearts, err = r.ledger.EnsureMinHearts(ctx, userKey, *rule.Floor)
		if err != nil {
			return nil, fmt.Errorf("reconciler: ensure min hearts: %w", err)
		}
	}

	tier := r.tiers.Resolve(hearts)
	if tier != profile.Tier {
		if err := r.ledger.SetTier(ctx, userKey, tier); err != nil {
			r.logger.Warn("tier snapshot update failed", "user_key", userKey, "error", err)
		}
	}

	spec, _ := r.tiers.Spec(tier)
	var remove []string
	for _, name := range r.tiers.Names() {
		if name != tier {
			remove = append(remove, name)
		}
	}

	intents := []models.Intent{models.SyncRoleIntent{
		GuildID:     guildID,
		UserID:      member.ID,
		Tier:        tier,
		TierColor:   spec.DisplayColor,
		RemoveTiers: remove,
	}}
	if len(rule.GrantedRoles) > 0 {
		intents = append(intents, models.GrantRolesIntent{
			GuildID: guildID,
			UserID:  member.ID,
			Roles:   rule.GrantedRoles,
		})
	}
	return intents, nil
}
