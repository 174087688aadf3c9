package services

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// MemoryLedger is the in-process twin of the Mongo ledger, used in tests and
// for running the server without a database. One mutex stands in for the
// store's per-document atomicity.
type MemoryLedger struct {
	mu       sync.Mutex
	profiles map[string]*models.UserProfile
	flags    map[string][]models.FlagRecord
	clock    clockwork.Clock
}

func NewMemoryLedger(clock clockwork.Clock) *MemoryLedger {
	return &MemoryLedger{
		profiles: make(map[string]*models.UserProfile),
		flags:    make(map[string][]models.FlagRecord),
		clock:    clock,
	}
}

func (s *MemoryLedger) GetOrCreate(ctx context.Context, userKey, guildID, userID, username string, startingHearts int) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prof, ok := s.profiles[userKey]; ok {
		cp := *prof
		return &cp, nil
	}

	now := s.clock.Now().UTC()
	prof := &models.UserProfile{
		UserKey:   userKey,
		GuildID:   guildID,
		UserID:    userID,
		Username:  username,
		Hearts:    startingHearts,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.profiles[userKey] = prof
	cp := *prof
	return &cp, nil
}

func (s *MemoryLedger) Get(ctx context.Context, userKey string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, ok := s.profiles[userKey]
	if !ok {
		return nil, ErrProfileNotFound
	}
	cp := *prof
	return &cp, nil
}

func (s *MemoryLedger) AddHearts(ctx context.Context, userKey string, delta int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, ok := s.profiles[userKey]
	if !ok {
		return 0, ErrProfileNotFound
	}
	prof.Hearts += delta
	if prof.Hearts < 0 {
		prof.Hearts = 0
	}
	prof.UpdatedAt = s.clock.Now().UTC()
	return prof.Hearts, nil
}

func (s *MemoryLedger) IncrementFlag(ctx context.Context, userKey string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, ok := s.profiles[userKey]
	if !ok {
		return 0, ErrProfileNotFound
	}
	prof.FlaggedCount++
	prof.UpdatedAt = s.clock.Now().UTC()
	return prof.FlaggedCount, nil
}

func (s *MemoryLedger) RecordFlag(ctx context.Context, userKey string, rec models.FlagRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	rec.UserKey = userKey
	if rec.Timestamp.IsZero() {
		rec.Timestamp = s.clock.Now().UTC()
	}
	s.flags[userKey] = append(s.flags[userKey], rec)
	return nil
}

func (s *MemoryLedger) ApplyDailyBonusIfDue(ctx context.Context, userKey string, bonus int) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, ok := s.profiles[userKey]
	if !ok {
		return 0, false, ErrProfileNotFound
	}

	today := s.clock.Now().UTC().Format("2006-01-02")
	if prof.LastDailyBonus == today {
		return 0, false, nil
	}
	prof.Hearts += bonus
	prof.LastDailyBonus = today
	prof.UpdatedAt = s.clock.Now().UTC()
	return prof.Hearts, true, nil
}

func (s *MemoryLedger) EnsureMinHearts(ctx context.Context, userKey string, floor int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prof, ok := s.profiles[userKey]
	if !ok {
		return 0, ErrProfileNotFound
	}
	if prof.Hearts < floor {
		prof.Hearts = floor
		prof.UpdatedAt = s.clock.Now().UTC()
	}
	return prof.Hearts, nil
}

func (s *MemoryLedger) SetTier(ctx context.Context, userKey, tier string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prof, ok := s.profiles[userKey]; ok {
		prof.Tier = tier
		prof.UpdatedAt = s.clock.Now().UTC()
	}
	return nil
}

func (s *MemoryLedger) SetUsername(ctx context.Context, userKey, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prof, ok := s.profiles[userKey]; ok {
		prof.Username = username
		prof.UpdatedAt = s.clock.Now().UTC()
	}
	return nil
}

func (s *MemoryLedger) Delete(ctx context.Context, userKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flags, userKey)
	delete(s.profiles, userKey)
	return nil
}

func (s *MemoryLedger) TopByGuild(ctx context.Context, guildID string, limit int) ([]models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.UserProfile
	for _, prof := range s.profiles {
		if prof.GuildID == guildID {
			out = append(out, *prof)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Hearts > out[j].Hearts })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Flags returns the flag records for a key; test helper.
func (s *MemoryLedger) Flags(userKey string) []models.FlagRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make([]models.FlagRecord, len(s.flags[userKey]))
	copy(cp, s.flags[userKey])
	return cp
}
