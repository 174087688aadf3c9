package services

import (
	"context"
	"errors"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrExemptSubject   = errors.New("subject is exempt from penalties")
)

// Ledger is the transactional per-member hearts store. Every operation is
// atomic with respect to other operations on the same user key; operations on
// different keys need no coordination.
type Ledger interface {
	// GetOrCreate returns the profile, creating it with startingHearts, zero
	// flags, no bonus date and no tier if absent. An existing profile is
	// returned unmodified.
	GetOrCreate(ctx context.Context, userKey, guildID, userID, username string, startingHearts int) (*models.UserProfile, error)

	// Get returns the profile or ErrProfileNotFound.
	Get(ctx context.Context, userKey string) (*models.UserProfile, error)

	// AddHearts applies delta atomically, clamping the result to zero, and
	// returns the post-clamp total.
	AddHearts(ctx context.Context, userKey string, delta int) (int, error)

	// IncrementFlag bumps the flag counter and returns the new count.
	IncrementFlag(ctx context.Context, userKey string) (int, error)

	// RecordFlag appends a flag record. Independent of IncrementFlag; the
	// orchestrator invokes both together.
	RecordFlag(ctx context.Context, userKey string, rec models.FlagRecord) error

	// ApplyDailyBonusIfDue adds bonus once per UTC calendar day. Returns the
	// new total and true when applied, false when today's bonus already ran.
	// Under concurrent duplicate attempts exactly one succeeds.
	ApplyDailyBonusIfDue(ctx context.Context, userKey string, bonus int) (int, bool, error)

	// EnsureMinHearts raises hearts to floor if below it, never lowers, and
	// returns the resulting total. Repeated application is a no-op once met.
	EnsureMinHearts(ctx context.Context, userKey string, floor int) (int, error)

	// SetTier records the resolved tier snapshot on the profile.
	SetTier(ctx context.Context, userKey, tier string) error

	// SetUsername refreshes the display-name snapshot.
	SetUsername(ctx context.Context, userKey, username string) error

	// Delete removes the profile and cascades to its flag records.
	Delete(ctx context.Context, userKey string) error

	// TopByGuild returns up to limit profiles in a guild ordered by hearts
	// descending, ties broken by the store's natural ordering.
	TopByGuild(ctx context.Context, guildID string, limit int) ([]models.UserProfile, error)
}
