package models

import "fmt"

// ConflictKind classifies a structural or declared contradiction between
// two roles.
type ConflictKind string

const (
	// ConflictAuthorityCycle marks a cycle in the authority forest, or a
	// role invoking one of its own ancestors.
	ConflictAuthorityCycle ConflictKind = "authority_cycle"

	// ConflictContradictoryConstraint marks two roles whose declared
	// constraints or exclusive ownership areas contradict each other.
	ConflictContradictoryConstraint ConflictKind = "contradictory_constraint"

	// ConflictMissingDependency marks a role referencing another role that
	// does not exist in the catalog.
	ConflictMissingDependency ConflictKind = "missing_dependency"
)

// ConflictRecord is a reported, unresolved contradiction. Conflicts are
// always surfaced to the caller for human escalation; nothing in the
// governor ever picks a winner.
type ConflictRecord struct {
	Kind   ConflictKind
	RoleA  string
	RoleB  string
	Detail string

	// Escalation is the human-facing payload: what decision is needed.
	Escalation string
}

// String renders the record for console output.
func (c ConflictRecord) String() string {
	if c.RoleB == "" || c.RoleB == c.RoleA {
		return fmt.Sprintf("[%s] %s: %s", c.Kind, c.RoleA, c.Detail)
	}
	return fmt.Sprintf("[%s] %s <-> %s: %s", c.Kind, c.RoleA, c.RoleB, c.Detail)
}

// ConsultationOutput carries the free-form constraints a consulted role
// declared, fed to output-level conflict detection after a phase completes.
type ConsultationOutput struct {
	Role        string   `yaml:"role"`
	Constraints []string `yaml:"constraints"`
}
