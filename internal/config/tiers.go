package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// LoadTierTable reads an ordered tier threshold table from a JSON file of
// {name, min_hearts, display_color} entries. Callers fall back to the default
// table on any error.
func LoadTierTable(path string) ([]models.TierSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tier table: %w", err)
	}

	var specs []models.TierSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("tier table: %w", err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("tier table: empty file %s", path)
	}
	return specs, nil
}
