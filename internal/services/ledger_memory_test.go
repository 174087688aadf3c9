package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

func newTestLedger(t *testing.T) (*MemoryLedger, clockwork.FakeClock) {
	t.Helper()
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	return NewMemoryLedger(clock), clock
}

func mustCreate(t *testing.T, ledger *MemoryLedger, userKey string, hearts int) {
	t.Helper()
	_, err := ledger.GetOrCreate(context.Background(), userKey, "g1", "u1", "tester", hearts)
	require.NoError(t, err)
}

func TestGetOrCreateIsIdempotent(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	first, err := ledger.GetOrCreate(ctx, "g1:u1", "g1", "u1", "tester", 50)
	require.NoError(t, err)
	assert.Equal(t, 50, first.Hearts)
	assert.Zero(t, first.FlaggedCount)
	assert.Empty(t, first.LastDailyBonus)
	assert.Empty(t, first.Tier)

	_, err = ledger.AddHearts(ctx, "g1:u1", 20)
	require.NoError(t, err)

	// Second call returns existing state, not a reset.
	again, err := ledger.GetOrCreate(ctx, "g1:u1", "g1", "u1", "tester", 50)
	require.NoError(t, err)
	assert.Equal(t, 70, again.Hearts)
}

func TestAddHeartsNeverGoesBelowZero(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	cases := []struct {
		start, delta, want int
	}{
		{0, -1, 0},
		{5, -10, 0},
		{50, -50, 0},
		{50, -49, 1},
		{0, 10, 10},
		{100, -1000000, 0},
	}
	for i, tc := range cases {
		key := models.UserKey("g1", string(rune('a'+i)))
		_, err := ledger.GetOrCreate(ctx, key, "g1", "x", "x", tc.start)
		require.NoError(t, err)

		got, err := ledger.AddHearts(ctx, key, tc.delta)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "start=%d delta=%d", tc.start, tc.delta)
		assert.GreaterOrEqual(t, got, 0)
	}
}

func TestDailyBonusAppliesOncePerDay(t *testing.T) {
	ledger, clock := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, ledger, "g1:u1", 50)

	hearts, applied, err := ledger.ApplyDailyBonusIfDue(ctx, "g1:u1", 5)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 55, hearts)

	// Same calendar day: no second bonus, even hours later.
	clock.Advance(6 * time.Hour)
	_, applied, err = ledger.ApplyDailyBonusIfDue(ctx, "g1:u1", 5)
	require.NoError(t, err)
	assert.False(t, applied)

	// Next day it is due again.
	clock.Advance(24 * time.Hour)
	hearts, applied, err = ledger.ApplyDailyBonusIfDue(ctx, "g1:u1", 5)
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, 60, hearts)
}

func TestDailyBonusConcurrentDuplicatesApplyOnce(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, ledger, "g1:u1", 50)

	const attempts = 16
	var wg sync.WaitGroup
	applications := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, applied, err := ledger.ApplyDailyBonusIfDue(ctx, "g1:u1", 5)
			assert.NoError(t, err)
			applications <- applied
		}()
	}
	wg.Wait()
	close(applications)

	succeeded := 0
	for applied := range applications {
		if applied {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)

	prof, err := ledger.Get(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, 55, prof.Hearts, "total increase equals one bonus, not %d", attempts)
}

func TestEnsureMinHearts(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, ledger, "g1:u1", 50)

	hearts, err := ledger.EnsureMinHearts(ctx, "g1:u1", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, hearts)

	// Re-applying the floor must not inflate past it.
	hearts, err = ledger.EnsureMinHearts(ctx, "g1:u1", 200)
	require.NoError(t, err)
	assert.Equal(t, 200, hearts)

	// A lower floor never lowers hearts.
	hearts, err = ledger.EnsureMinHearts(ctx, "g1:u1", 10)
	require.NoError(t, err)
	assert.Equal(t, 200, hearts)
}

func TestIncrementFlagAndRecordFlag(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, ledger, "g1:u1", 50)

	count, err := ledger.IncrementFlag(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	count, err = ledger.IncrementFlag(ctx, "g1:u1")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	err = ledger.RecordFlag(ctx, "g1:u1", models.FlagRecord{
		GuildID:   "g1",
		ChannelID: "c1",
		MessageID: "m1",
		AuthorID:  "u1",
		Content:   "bad words",
		Reasons:   []string{"profanity"},
	})
	require.NoError(t, err)

	records := ledger.Flags("g1:u1")
	require.Len(t, records, 1)
	assert.NotEmpty(t, records[0].ID)
	assert.False(t, records[0].Timestamp.IsZero())
	assert.Equal(t, []string{"profanity"}, records[0].Reasons)
}

func TestDeleteCascadesFlagRecords(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()
	mustCreate(t, ledger, "g1:u1", 50)

	require.NoError(t, ledger.RecordFlag(ctx, "g1:u1", models.FlagRecord{Content: "x"}))
	require.NoError(t, ledger.RecordFlag(ctx, "g1:u1", models.FlagRecord{Content: "y"}))

	require.NoError(t, ledger.Delete(ctx, "g1:u1"))

	_, err := ledger.Get(ctx, "g1:u1")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Empty(t, ledger.Flags("g1:u1"))
}

func TestTopByGuildOrdersByHeartsDescending(t *testing.T) {
	ledger, _ := newTestLedger(t)
	ctx := context.Background()

	for _, p := range []struct {
		key    string
		guild  string
		hearts int
	}{
		{"g1:a", "g1", 30},
		{"g1:b", "g1", 90},
		{"g1:c", "g1", 60},
		{"g2:d", "g2", 500},
	} {
		_, err := ledger.GetOrCreate(ctx, p.key, p.guild, p.key, p.key, p.hearts)
		require.NoError(t, err)
	}

	top, err := ledger.TopByGuild(ctx, "g1", 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, 90, top[0].Hearts)
	assert.Equal(t, 60, top[1].Hearts)
	for _, p := range top {
		assert.Equal(t, "g1", p.GuildID)
	}
}
