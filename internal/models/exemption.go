package models

// ExemptionKind tags an ExemptionRule as matching a single user or every
// holder of a role.
type ExemptionKind string

const (
	ExemptByUser ExemptionKind = "user"
	ExemptByRole ExemptionKind = "role"
)

// ExemptionRule makes its subjects immune to penalties and removal. Floor, if
// set, is a minimum hearts value ensured during reconciliation; GrantedRoles
// are platform roles to hand out at the same time.
type ExemptionRule struct {
	Kind         ExemptionKind `json:"kind"`
	ID           string        `json:"id"`
	Floor        *int          `json:"floor,omitempty"`
	GrantedRoles []string      `json:"granted_roles,omitempty"`
}
