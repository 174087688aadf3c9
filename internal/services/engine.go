package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/metrics"
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// Pipeline outcomes.
const (
	OutcomeCompleted            = "completed"
	OutcomeCompletedWithRemoval = "completed_with_removal"
)

type EngineConfig struct {
	StartingHearts int
	DailyBonus     int
}

// Engine sequences one inbound message event through the pipeline:
// ensure profile, daily bonus, classification, penalty, rewards, tier
// resolution, removal evaluation. Ledger mutations are committed here;
// everything outward-facing comes back as intents for the caller to execute.
type Engine struct {
	ledger     Ledger
	classifier Classifier
	policy     *Policy
	tiers      *TierTable
	exemptions *ExemptionRegistry
	moderation *ModerationService
	cfg        EngineConfig
	logger     *slog.Logger
}

func NewEngine(ledger Ledger, classifier Classifier, policy *Policy, tiers *TierTable, exemptions *ExemptionRegistry, moderation *ModerationService, cfg EngineConfig, logger *slog.Logger) *Engine {
	return &Engine{
		ledger:     ledger,
		classifier: classifier,
		policy:     policy,
		tiers:      tiers,
		exemptions: exemptions,
		moderation: moderation,
		cfg:        cfg,
		logger:     logger,
	}
}

// SubjectResult is the final ledger view of one subject after an event.
type SubjectResult struct {
	UserKey string `json:"user_key"`
	UserID  string `json:"user_id"`
	Hearts  int    `json:"hearts"`
	Tier    string `json:"tier"`
}

// EventResult is the bundle returned per event: final state for author and
// helper plus the ordered side-effect intents. Intent execution failures are
// the caller's problem and never unwind what is recorded here.
type EventResult struct {
	Author        SubjectResult  `json:"author"`
	Helper        *SubjectResult `json:"helper,omitempty"`
	HelperOutcome string         `json:"helper_outcome"`

	Flagged      bool     `json:"flagged"`
	FlagReasons  []string `json:"flag_reasons,omitempty"`
	FlaggedCount int      `json:"flagged_count,omitempty"`
	BonusApplied bool     `json:"bonus_applied"`

	RemovalDecided bool   `json:"removal_decided"`
	Outcome        string `json:"outcome"`

	Intents []models.Intent `json:"-"`
}

// Moderation exposes the removal executor so intent executors can confirm
// removals back into the ledger.
func (e *Engine) Moderation() *ModerationService {
	return e.moderation
}

// ProcessMessage runs the full pipeline for one event. Author-side ledger
// failures abort with an error (the event counts as not applied and the next
// event retries naturally); helper-side failures only drop the helper reward.
func (e *Engine) ProcessMessage(ctx context.Context, ev *models.MessageEvent) (*EventResult, error) {
	metrics.EventsProcessed.Inc()

	authorKey := models.UserKey(ev.GuildID, ev.Author.ID)
	log := e.logger.With("user_key", authorKey, "message_id", ev.MessageID)

	// ProfileEnsured
	profile, err := e.ledger.GetOrCreate(ctx, authorKey, ev.GuildID, ev.Author.ID, ev.Author.Username, e.cfg.StartingHearts)
	if err != nil {
		return nil, fmt.Errorf("engine: ensure profile: %w", err)
	}
	if ev.Author.Username != "" && ev.Author.Username != profile.Username {
		if err := e.ledger.SetUsername(ctx, authorKey, ev.Author.Username); err != nil {
			log.Warn("username snapshot update failed", "error", err)
		}
	}
	authorHearts := profile.Hearts

	// BonusChecked
	bonusHearts, bonusApplied, err := e.ledger.ApplyDailyBonusIfDue(ctx, authorKey, e.cfg.DailyBonus)
	if err != nil {
		return nil, fmt.Errorf("engine: daily bonus: %w", err)
	}
	if bonusApplied {
		authorHearts = bonusHearts
		log.Debug("daily bonus applied", "hearts", authorHearts)
	}

	// Classified — never fails, degrades to neutral.
	verdict := e.classifier.Classify(ctx, ev.Content)

	authorExempt := e.exemptions.IsExempt(ev.Author.ID, ev.AuthorRoleIDs)
	helperRes := ResolveHelper(ev)
	hasHelper := helperRes.Outcome == ResolvedHelper
	helperExempt := false
	if hasHelper {
		helperExempt = e.exemptions.IsExempt(helperRes.Helper.ID, nil)
	}

	decision := e.policy.Evaluate(verdict, authorExempt, hasHelper, helperExempt)

	result := &EventResult{
		HelperOutcome: helperRes.Outcome.String(),
		BonusApplied:  bonusApplied,
	}

	// PenaltyApplied — flag record and counter are ledger commits, not
	// intents: they must survive even if every notification fails.
	if decision.RecordFlag {
		rec := models.FlagRecord{
			GuildID:   ev.GuildID,
			ChannelID: ev.ChannelID,
			MessageID: ev.MessageID,
			AuthorID:  ev.Author.ID,
			Content:   ev.Content,
			Reasons:   decision.FlagReasons,
		}
		if err := e.ledger.RecordFlag(ctx, authorKey, rec); err != nil {
			return nil, fmt.Errorf("engine: record flag: %w", err)
		}
		count, err := e.ledger.IncrementFlag(ctx, authorKey)
		if err != nil {
			return nil, fmt.Errorf("engine: increment flag: %w", err)
		}
		metrics.FlagsRecorded.Inc()
		result.Flagged = true
		result.FlagReasons = decision.FlagReasons
		result.FlaggedCount = count
	}

	// RewardsApplied — accumulated delta, one ledger call per subject.
	if decision.AuthorDelta != 0 {
		authorHearts, err = e.ledger.AddHearts(ctx, authorKey, decision.AuthorDelta)
		if err != nil {
			return nil, fmt.Errorf("engine: author hearts: %w", err)
		}
		if decision.AuthorDelta > 0 {
			metrics.HeartsAwarded.Add(float64(decision.AuthorDelta))
		} else {
			metrics.HeartsDeducted.Add(float64(-decision.AuthorDelta))
		}
	}

	if decision.RecordFlag {
		result.Intents = append(result.Intents, models.NotifyFlagIntent{
			GuildID:   ev.GuildID,
			ChannelID: ev.ChannelID,
			MessageID: ev.MessageID,
			UserID:    ev.Author.ID,
			Reasons:   decision.FlagReasons,
			Deducted:  e.policy.PenaltyFlag,
			HeartsNow: authorHearts,
		})
	}
	if decision.AuthorNotice != nil {
		result.Intents = append(result.Intents, models.NotifyRewardIntent{
			GuildID:     ev.GuildID,
			ChannelID:   ev.ChannelID,
			MessageID:   ev.MessageID,
			UserID:      ev.Author.ID,
			Amount:      decision.AuthorNotice.Amount,
			Reason:      decision.AuthorNotice.Reason,
			HeartsAfter: authorHearts,
			Reaction:    decision.AuthorNotice.Reaction,
		})
	}

	if hasHelper && decision.HelperDelta > 0 {
		result.Helper = e.rewardHelper(ctx, ev, helperRes.Helper, decision, result)
	}

	// TiersResolved (author)
	authorTier := e.tiers.Resolve(authorHearts)
	if authorTier != profile.Tier {
		if err := e.ledger.SetTier(ctx, authorKey, authorTier); err != nil {
			log.Warn("tier snapshot update failed", "tier", authorTier, "error", err)
		}
	}
	result.Intents = append(result.Intents, e.syncRoleIntent(ev.GuildID, ev.Author.ID, authorTier))

	// RemovalEvaluated
	result.Outcome = OutcomeCompleted
	if e.moderation.ShouldRemove(authorHearts, authorExempt) {
		result.RemovalDecided = true
		result.Outcome = OutcomeCompletedWithRemoval
		result.Intents = append(result.Intents, models.RemoveMemberIntent{
			GuildID: ev.GuildID,
			UserID:  ev.Author.ID,
			UserKey: authorKey,
			Reason:  "hearts depleted",
		})
	}

	result.Author = SubjectResult{
		UserKey: authorKey,
		UserID:  ev.Author.ID,
		Hearts:  authorHearts,
		Tier:    authorTier,
	}
	return result, nil
}

// rewardHelper applies the helper's accumulated reward. Failures here are
// single-subject: they drop the helper from the result without touching the
// author's already-committed state.
func (e *Engine) rewardHelper(ctx context.Context, ev *models.MessageEvent, helper models.Account, decision PolicyDecision, result *EventResult) *SubjectResult {
	helperKey := models.UserKey(ev.GuildID, helper.ID)
	log := e.logger.With("user_key", helperKey, "message_id", ev.MessageID)

	profile, err := e.ledger.GetOrCreate(ctx, helperKey, ev.GuildID, helper.ID, helper.Username, e.cfg.StartingHearts)
	if err != nil {
		log.Warn("helper profile ensure failed, reward skipped", "error", err)
		return nil
	}

	hearts, err := e.ledger.AddHearts(ctx, helperKey, decision.HelperDelta)
	if err != nil {
		log.Warn("helper reward failed", "error", err)
		return nil
	}
	metrics.HeartsAwarded.Add(float64(decision.HelperDelta))

	tier := e.tiers.Resolve(hearts)
	if tier != profile.Tier {
		if err := e.ledger.SetTier(ctx, helperKey, tier); err != nil {
			log.Warn("helper tier snapshot update failed", "tier", tier, "error", err)
		}
	}

	if decision.HelperNotice != nil {
		result.Intents = append(result.Intents, models.NotifyRewardIntent{
			GuildID:     ev.GuildID,
			ChannelID:   ev.ChannelID,
			MessageID:   ev.MessageID,
			UserID:      helper.ID,
			Amount:      decision.HelperNotice.Amount,
			Reason:      decision.HelperNotice.Reason,
			HeartsAfter: hearts,
			Reaction:    decision.HelperNotice.Reaction,
		})
	}
	result.Intents = append(result.Intents, e.syncRoleIntent(ev.GuildID, helper.ID, tier))

	return &SubjectResult{
		UserKey: helperKey,
		UserID:  helper.ID,
		Hearts:  hearts,
		Tier:    tier,
	}
}

func (e *Engine) syncRoleIntent(guildID, userID, tier string) models.SyncRoleIntent {
	spec, _ := e.tiers.Spec(tier)

	var remove []string
	for _, name := range e.tiers.Names() {
		if name != tier {
			remove = append(remove, name)
		}
	}

	return models.SyncRoleIntent{
		GuildID:     guildID,
		UserID:      userID,
		Tier:        tier,
		TierColor:   spec.DisplayColor,
		RemoveTiers: remove,
	}
}

// AdminActionResult is returned by Award and Penalize.
type AdminActionResult struct {
	UserKey        string          `json:"user_key"`
	Hearts         int             `json:"hearts"`
	Tier           string          `json:"tier"`
	RemovalDecided bool            `json:"removal_decided"`
	Intents        []models.Intent `json:"-"`
}

// Award adds a non-negative delta on behalf of an operator. The ledger's zero
// floor is the only floor involved.
func (e *Engine) Award(ctx context.Context, guildID, userID, username string, amount int) (*AdminActionResult, error) {
	if amount < 0 {
		amount = -amount
	}

	userKey := models.UserKey(guildID, userID)
	profile, err := e.ledger.GetOrCreate(ctx, userKey, guildID, userID, username, e.cfg.StartingHearts)
	if err != nil {
		return nil, fmt.Errorf("engine: award: %w", err)
	}

	hearts, err := e.ledger.AddHearts(ctx, userKey, amount)
	if err != nil {
		return nil, fmt.Errorf("engine: award: %w", err)
	}
	metrics.HeartsAwarded.Add(float64(amount))

	tier := e.tiers.Resolve(hearts)
	if tier != profile.Tier {
		if err := e.ledger.SetTier(ctx, userKey, tier); err != nil {
			e.logger.Warn("tier snapshot update failed", "user_key", userKey, "error", err)
		}
	}

	return &AdminActionResult{
		UserKey: userKey,
		Hearts:  hearts,
		Tier:    tier,
		Intents: []models.Intent{
			models.NotifyRewardIntent{
				GuildID:     guildID,
				UserID:      userID,
				Amount:      amount,
				Reason:      "Admin award",
				HeartsAfter: hearts,
			},
			e.syncRoleIntent(guildID, userID, tier),
		},
	}, nil
}

// Penalize deducts hearts on behalf of an operator. Exempt subjects are
// refused outright; a zero-hearts result triggers the same removal
// evaluation as an organic penalty.
func (e *Engine) Penalize(ctx context.Context, guildID, userID, username string, roleIDs []string, amount int) (*AdminActionResult, error) {
	if e.exemptions.IsExempt(userID, roleIDs) {
		return nil, ErrExemptSubject
	}
	if amount < 0 {
		amount = -amount
	}

	userKey := models.UserKey(guildID, userID)
	profile, err := e.ledger.GetOrCreate(ctx, userKey, guildID, userID, username, e.cfg.StartingHearts)
	if err != nil {
		return nil, fmt.Errorf("engine: penalize: %w", err)
	}

	hearts, err := e.ledger.AddHearts(ctx, userKey, -amount)
	if err != nil {
		return nil, fmt.Errorf("engine: penalize: %w", err)
	}
	metrics.HeartsDeducted.Add(float64(amount))

	tier := e.tiers.Resolve(hearts)
	if tier != profile.Tier {
		if err := e.ledger.SetTier(ctx, userKey, tier); err != nil {
			e.logger.Warn("tier snapshot update failed", "user_key", userKey, "error", err)
		}
	}

	result := &AdminActionResult{
		UserKey: userKey,
		Hearts:  hearts,
		Tier:    tier,
		Intents: []models.Intent{e.syncRoleIntent(guildID, userID, tier)},
	}
	if e.moderation.ShouldRemove(hearts, false) {
		result.RemovalDecided = true
		result.Intents = append(result.Intents, models.RemoveMemberIntent{
			GuildID: guildID,
			UserID:  userID,
			UserKey: userKey,
			Reason:  "hearts depleted by penalty",
		})
	}
	return result, nil
}
