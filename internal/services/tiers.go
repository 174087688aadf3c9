package services

import (
	"fmt"
	"sort"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// TierTable is an immutable, validated hearts-to-tier threshold table. Specs
// are held sorted descending by MinHearts; the mandatory zero-floor spec makes
// Resolve total over [0, inf).
type TierTable struct {
	specs []models.TierSpec
}

// NewTierTable validates and sorts the given specs. Rules: at least one spec,
// no negative or duplicate thresholds, exactly one spec with MinHearts == 0.
// Contiguity of the bands then follows from sorting.
func NewTierTable(specs []models.TierSpec) (*TierTable, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("tier table: no specs")
	}

	seen := make(map[int]string, len(specs))
	zeroFloors := 0
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("tier table: spec with empty name")
		}
		if s.MinHearts < 0 {
			return nil, fmt.Errorf("tier table: %q has negative min_hearts %d", s.Name, s.MinHearts)
		}
		if other, dup := seen[s.MinHearts]; dup {
			return nil, fmt.Errorf("tier table: %q and %q share min_hearts %d", other, s.Name, s.MinHearts)
		}
		seen[s.MinHearts] = s.Name
		if s.MinHearts == 0 {
			zeroFloors++
		}
	}
	if zeroFloors != 1 {
		return nil, fmt.Errorf("tier table: need exactly one catch-all spec with min_hearts 0, got %d", zeroFloors)
	}

	sorted := make([]models.TierSpec, len(specs))
	copy(sorted, specs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MinHearts > sorted[j].MinHearts })

	return &TierTable{specs: sorted}, nil
}

// DefaultTierTable is the built-in four-band table used when no external
// configuration is supplied.
func DefaultTierTable() *TierTable {
	t, err := NewTierTable([]models.TierSpec{
		{Name: "Legends", MinHearts: 500, DisplayColor: 0xF1C40F},
		{Name: "pro", MinHearts: 250, DisplayColor: 0x9B59B6},
		{Name: "Guildster", MinHearts: 100, DisplayColor: 0x3498DB},
		{Name: "Noob", MinHearts: 0, DisplayColor: 0x95A5A6},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Resolve returns the name of the first band whose threshold is at or below
// hearts. Always succeeds for hearts >= 0 thanks to the zero-floor spec.
func (t *TierTable) Resolve(hearts int) string {
	for _, s := range t.specs {
		if s.MinHearts <= hearts {
			return s.Name
		}
	}
	// Unreachable for hearts >= 0; the zero-floor spec always matches.
	return t.specs[len(t.specs)-1].Name
}

// Spec returns the spec for a tier name.
func (t *TierTable) Spec(name string) (models.TierSpec, bool) {
	for _, s := range t.specs {
		if s.Name == name {
			return s, true
		}
	}
	return models.TierSpec{}, false
}

// Names lists tier names in descending threshold order.
func (t *TierTable) Names() []string {
	names := make([]string, len(t.specs))
	for i, s := range t.specs {
		names[i] = s.Name
	}
	return names
}
