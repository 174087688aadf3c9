package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// FileMemberDirectory reads role membership from a JSON file of the shape
// {"<roleID>": [{"id": "...", "username": "..."}]}. It stands in for a live
// platform directory during reconciliation runs.
type FileMemberDirectory struct {
	membersByRole map[string][]models.Account
}

func NewFileMemberDirectory(path string) (*FileMemberDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("member directory: %w", err)
	}

	var byRole map[string][]models.Account
	if err := json.Unmarshal(data, &byRole); err != nil {
		return nil, fmt.Errorf("member directory: %w", err)
	}
	return &FileMemberDirectory{membersByRole: byRole}, nil
}

func (d *FileMemberDirectory) MembersWithRole(ctx context.Context, guildID, roleID string) ([]models.Account, error) {
	members := d.membersByRole[roleID]
	out := make([]models.Account, len(members))
	copy(out, members)
	return out, nil
}
