package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

type stubClassifier struct {
	result models.ClassificationResult
}

func (s stubClassifier) Classify(ctx context.Context, text string) models.ClassificationResult {
	return s.result
}

type engineFixture struct {
	engine *Engine
	ledger *MemoryLedger
	clock  clockwork.FakeClock
}

func newEngineFixture(t *testing.T, verdict models.ClassificationResult, rules []models.ExemptionRule) *engineFixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ledger := NewMemoryLedger(clock)
	table := DefaultTierTable()

	engine := NewEngine(
		ledger,
		stubClassifier{result: verdict},
		&Policy{PenaltyFlag: 10, Advice: 5, ProblemSolved: 10},
		table,
		NewExemptionRegistry(rules),
		NewModerationService(ledger, logger),
		EngineConfig{StartingHearts: 50, DailyBonus: 5},
		logger,
	)
	return &engineFixture{engine: engine, ledger: ledger, clock: clock}
}

func messageFrom(userID, content string) *models.MessageEvent {
	return &models.MessageEvent{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		Author:    models.Account{ID: userID, Username: userID},
		Content:   content,
	}
}

func intentsOfKind(intents []models.Intent, kind string) []models.Intent {
	var out []models.Intent
	for _, in := range intents {
		if in.Kind() == kind {
			out = append(out, in)
		}
	}
	return out
}

func TestProcessMessageCleanFirstMessage(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(), nil)

	res, err := f.engine.ProcessMessage(context.Background(), messageFrom("u1", "hello"))
	require.NoError(t, err)

	// New profile starts at 50 and immediately earns the daily bonus.
	assert.Equal(t, 55, res.Author.Hearts)
	assert.True(t, res.BonusApplied)
	assert.Equal(t, "Noob", res.Author.Tier)
	assert.False(t, res.Flagged)
	assert.Nil(t, res.Helper)
	assert.Equal(t, "none", res.HelperOutcome)
	assert.Equal(t, OutcomeCompleted, res.Outcome)

	// The only side effect for a clean message is the role sync.
	require.Len(t, res.Intents, 1)
	sync, ok := res.Intents[0].(models.SyncRoleIntent)
	require.True(t, ok)
	assert.Equal(t, "Noob", sync.Tier)
	assert.ElementsMatch(t, []string{"Legends", "pro", "Guildster"}, sync.RemoveTiers)
}

func TestProcessMessageBonusOncePerDay(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(), nil)
	ctx := context.Background()

	first, err := f.engine.ProcessMessage(ctx, messageFrom("u1", "hi"))
	require.NoError(t, err)
	assert.True(t, first.BonusApplied)

	second, err := f.engine.ProcessMessage(ctx, messageFrom("u1", "hi again"))
	require.NoError(t, err)
	assert.False(t, second.BonusApplied)
	assert.Equal(t, first.Author.Hearts, second.Author.Hearts)

	f.clock.Advance(24 * time.Hour)
	third, err := f.engine.ProcessMessage(ctx, messageFrom("u1", "next day"))
	require.NoError(t, err)
	assert.True(t, third.BonusApplied)
	assert.Equal(t, 60, third.Author.Hearts)
}

func TestProcessMessageFlaggedAuthor(t *testing.T) {
	f := newEngineFixture(t, models.ClassificationResult{
		Flagged: true,
		Reasons: []string{"abuse", "profanity"},
	}, nil)

	ev := messageFrom("u1", "you are terrible")
	res, err := f.engine.ProcessMessage(context.Background(), ev)
	require.NoError(t, err)

	// 50 start + 5 bonus - 10 penalty.
	assert.Equal(t, 45, res.Author.Hearts)
	assert.True(t, res.Flagged)
	assert.Equal(t, []string{"abuse", "profanity"}, res.FlagReasons)
	assert.Equal(t, 1, res.FlaggedCount)

	// The flag record is committed to the ledger with the message snapshot.
	records := f.ledger.Flags("g1:u1")
	require.Len(t, records, 1)
	assert.Equal(t, "m1", records[0].MessageID)
	assert.Equal(t, "you are terrible", records[0].Content)

	notices := intentsOfKind(res.Intents, models.IntentKindNotifyFlag)
	require.Len(t, notices, 1)
	flag := notices[0].(models.NotifyFlagIntent)
	assert.Equal(t, 10, flag.Deducted)
	assert.Equal(t, 45, flag.HeartsNow)
}

func TestProcessMessageExemptAuthorKeepsHearts(t *testing.T) {
	f := newEngineFixture(t, models.ClassificationResult{
		Flagged: true,
		Reasons: []string{"abuse"},
	}, []models.ExemptionRule{{Kind: models.ExemptByUser, ID: "u1"}})

	res, err := f.engine.ProcessMessage(context.Background(), messageFrom("u1", "rant"))
	require.NoError(t, err)

	assert.Equal(t, 55, res.Author.Hearts)
	assert.False(t, res.Flagged)
	assert.Zero(t, res.FlaggedCount)
	assert.Empty(t, f.ledger.Flags("g1:u1"))
	assert.Empty(t, intentsOfKind(res.Intents, models.IntentKindNotifyFlag))
}

func TestProcessMessageDualEffectWithHelper(t *testing.T) {
	// Flagged wording that still carries good advice and solves the helper's
	// problem: author nets -10 +5, helper earns the solve reward.
	f := newEngineFixture(t, models.ClassificationResult{
		Flagged:       true,
		Reasons:       []string{"profanity"},
		GoodAdvice:    true,
		ProblemSolved: true,
	}, nil)

	ev := messageFrom("u1", "fixed, and watch your language")
	ev.ReplyTo = &models.Account{ID: "u2", Username: "asker"}

	res, err := f.engine.ProcessMessage(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, 50, res.Author.Hearts) // 50 +5 bonus -10 +5
	assert.True(t, res.Flagged)
	assert.Equal(t, "resolved", res.HelperOutcome)

	require.NotNil(t, res.Helper)
	assert.Equal(t, "g1:u2", res.Helper.UserKey)
	assert.Equal(t, 60, res.Helper.Hearts) // fresh profile 50 +10

	rewards := intentsOfKind(res.Intents, models.IntentKindNotifyReward)
	require.Len(t, rewards, 2)
	author := rewards[0].(models.NotifyRewardIntent)
	assert.Equal(t, "u1", author.UserID)
	assert.Equal(t, "Good advice", author.Reason)
	helper := rewards[1].(models.NotifyRewardIntent)
	assert.Equal(t, "u2", helper.UserID)
	assert.Equal(t, "Problem solved", helper.Reason)
	assert.Equal(t, 60, helper.HeartsAfter)

	// One role sync per touched subject.
	assert.Len(t, intentsOfKind(res.Intents, models.IntentKindSyncRole), 2)
}

func TestProcessMessageSelfReplyEarnsNothing(t *testing.T) {
	f := newEngineFixture(t, models.ClassificationResult{ProblemSolved: true}, nil)

	ev := messageFrom("u1", "never mind, solved it myself")
	ev.ReplyTo = &models.Account{ID: "u1"}

	res, err := f.engine.ProcessMessage(context.Background(), ev)
	require.NoError(t, err)

	assert.Equal(t, "self_reference_rejected", res.HelperOutcome)
	assert.Nil(t, res.Helper)
	assert.Equal(t, 55, res.Author.Hearts)
	assert.Empty(t, intentsOfKind(res.Intents, models.IntentKindNotifyReward))
}

func TestProcessMessageRemovalDecidedAtZero(t *testing.T) {
	f := newEngineFixture(t, models.ClassificationResult{
		Flagged: true,
		Reasons: []string{"abuse"},
	}, nil)
	ctx := context.Background()

	// Drain the author to the floor: 50+5 then -10 per flagged message.
	var res *EventResult
	var err error
	for i := 0; i < 6; i++ {
		res, err = f.engine.ProcessMessage(ctx, messageFrom("u1", "abuse"))
		require.NoError(t, err)
	}

	assert.Equal(t, 0, res.Author.Hearts)
	assert.True(t, res.RemovalDecided)
	assert.Equal(t, OutcomeCompletedWithRemoval, res.Outcome)

	removals := intentsOfKind(res.Intents, models.IntentKindRemoveMember)
	require.Len(t, removals, 1)
	removal := removals[0].(models.RemoveMemberIntent)
	assert.Equal(t, "g1:u1", removal.UserKey)

	// Deciding removal does not touch the ledger; the profile and its flag
	// history survive until the removal is confirmed.
	prof, err := f.ledger.Get(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, 0, prof.Hearts)
	assert.Len(t, f.ledger.Flags("g1:u1"), 6)

	require.NoError(t, f.engine.Moderation().ConfirmRemoval(ctx, "g1:u1"))
	_, err = f.ledger.Get(ctx, "g1:u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Empty(t, f.ledger.Flags("g1:u1"))
}

func TestProcessMessageExemptAuthorNeverRemoved(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(),
		[]models.ExemptionRule{{Kind: models.ExemptByRole, ID: "mods"}})
	ctx := context.Background()

	// Force the hearts to zero directly, then run an event for the exempt
	// member. No removal may be decided.
	_, err := f.ledger.GetOrCreate(ctx, "g1:u1", "g1", "u1", "u1", 50)
	require.NoError(t, err)
	_, err = f.ledger.AddHearts(ctx, "g1:u1", -100)
	require.NoError(t, err)

	ev := messageFrom("u1", "hello")
	ev.AuthorRoleIDs = []string{"mods"}
	// Mark today's bonus as spent so it does not lift the member off zero.
	_, _, err = f.ledger.ApplyDailyBonusIfDue(ctx, "g1:u1", 0)
	require.NoError(t, err)

	res, err := f.engine.ProcessMessage(ctx, ev)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Author.Hearts)
	assert.False(t, res.RemovalDecided)
	assert.Equal(t, OutcomeCompleted, res.Outcome)
	assert.Empty(t, intentsOfKind(res.Intents, models.IntentKindRemoveMember))
}

func TestProcessMessageTierPromotion(t *testing.T) {
	f := newEngineFixture(t, models.ClassificationResult{GoodAdvice: true}, nil)
	ctx := context.Background()

	_, err := f.ledger.GetOrCreate(ctx, "g1:u1", "g1", "u1", "u1", 95)
	require.NoError(t, err)

	// 95 +5 bonus +5 advice crosses the 100 threshold.
	res, err := f.engine.ProcessMessage(ctx, messageFrom("u1", "try restarting it"))
	require.NoError(t, err)

	assert.Equal(t, 105, res.Author.Hearts)
	assert.Equal(t, "Guildster", res.Author.Tier)

	prof, err := f.ledger.Get(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, "Guildster", prof.Tier)
}

func TestAwardAddsHeartsAndSyncsRole(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(), nil)

	res, err := f.engine.Award(context.Background(), "g1", "u1", "tester", 200)
	require.NoError(t, err)

	assert.Equal(t, 250, res.Hearts)
	assert.Equal(t, "pro", res.Tier)
	assert.False(t, res.RemovalDecided)

	require.Len(t, res.Intents, 2)
	reward := res.Intents[0].(models.NotifyRewardIntent)
	assert.Equal(t, 200, reward.Amount)
	assert.Equal(t, 250, reward.HeartsAfter)
	sync := res.Intents[1].(models.SyncRoleIntent)
	assert.Equal(t, "pro", sync.Tier)
}

func TestPenalizeRefusesExemptSubject(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(),
		[]models.ExemptionRule{{Kind: models.ExemptByUser, ID: "vip"}})

	_, err := f.engine.Penalize(context.Background(), "g1", "vip", "vip", nil, 10)
	assert.ErrorIs(t, err, ErrExemptSubject)

	// Nothing was created for the refused subject.
	_, err = f.ledger.Get(context.Background(), "g1:vip")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestPenalizeToZeroDecidesRemoval(t *testing.T) {
	f := newEngineFixture(t, models.NeutralClassification(), nil)
	ctx := context.Background()

	res, err := f.engine.Penalize(ctx, "g1", "u1", "tester", nil, 75)
	require.NoError(t, err)

	assert.Equal(t, 0, res.Hearts)
	assert.True(t, res.RemovalDecided)

	removals := intentsOfKind(res.Intents, models.IntentKindRemoveMember)
	require.Len(t, removals, 1)

	// Ledger state is intact until the removal is confirmed.
	prof, err := f.ledger.Get(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, 0, prof.Hearts)
}
