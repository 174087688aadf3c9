package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// exemptionEntry mirrors the on-disk shape, which historically allowed both
// camelCase and snake_case keys and a numeric "hearts" floor.
type exemptionEntry struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	RoleID    string   `json:"roleId"`
	RoleIDAlt string   `json:"role_id"`
	Hearts    *float64 `json:"hearts"`
	Roles     []string `json:"roles"`
}

// LoadExemptions reads the exemption rules file. Entries that name neither a
// user nor a role, or that fail to decode, are skipped; a missing file means
// no exemptions. Malformed input fails closed rather than fatal.
func LoadExemptions(path string) []models.ExemptionRule {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("exemptions file unreadable, continuing without", "path", path, "error", err)
		}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		slog.Warn("exemptions file is not a JSON list, continuing without", "path", path, "error", err)
		return nil
	}

	var rules []models.ExemptionRule
	for i, item := range raw {
		var entry exemptionEntry
		if err := json.Unmarshal(item, &entry); err != nil {
			slog.Warn("skipping malformed exemption entry", "index", i, "error", err)
			continue
		}

		uid := strings.TrimSpace(firstNonEmpty(entry.ID, entry.UserID))
		rid := strings.TrimSpace(firstNonEmpty(entry.RoleID, entry.RoleIDAlt))

		rule := models.ExemptionRule{GrantedRoles: entry.Roles}
		switch {
		case uid != "":
			rule.Kind = models.ExemptByUser
			rule.ID = uid
		case rid != "":
			rule.Kind = models.ExemptByRole
			rule.ID = rid
		default:
			slog.Warn("skipping exemption entry with no user or role id", "index", i)
			continue
		}

		if entry.Hearts != nil {
			floor := int(*entry.Hearts)
			if floor < 0 {
				slog.Warn("skipping exemption entry with negative hearts floor", "index", i)
				continue
			}
			rule.Floor = &floor
		}

		rules = append(rules, rule)
	}
	return rules
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
