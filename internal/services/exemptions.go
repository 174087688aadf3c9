package services

import (
	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

// ExemptionRegistry answers exemption membership queries against the
// configured rule set. Built once at startup from validated rules; reload
// means constructing a new registry.
type ExemptionRegistry struct {
	byUser map[string]models.ExemptionRule
	byRole map[string]models.ExemptionRule
	rules  []models.ExemptionRule
}

func NewExemptionRegistry(rules []models.ExemptionRule) *ExemptionRegistry {
	r := &ExemptionRegistry{
		byUser: make(map[string]models.ExemptionRule),
		byRole: make(map[string]models.ExemptionRule),
		rules:  rules,
	}
	for _, rule := range rules {
		switch rule.Kind {
		case models.ExemptByUser:
			r.byUser[rule.ID] = rule
		case models.ExemptByRole:
			r.byRole[rule.ID] = rule
		}
	}
	return r
}

// IsExempt reports whether any rule matches the user id or one of the
// member's role ids.
func (r *ExemptionRegistry) IsExempt(userID string, roleIDs []string) bool {
	if _, ok := r.byUser[userID]; ok {
		return true
	}
	for _, rid := range roleIDs {
		if _, ok := r.byRole[rid]; ok {
			return true
		}
	}
	return false
}

// ReconciliationTargets enumerates every rule so callers can ensure profiles
// exist, raise hearts to configured floors, and grant configured roles.
// Applying targets repeatedly must not inflate hearts past a floor already
// met, which EnsureMinHearts guarantees.
func (r *ExemptionRegistry) ReconciliationTargets() []models.ExemptionRule {
	targets := make([]models.ExemptionRule, len(r.rules))
	copy(targets, r.rules)
	return targets
}
