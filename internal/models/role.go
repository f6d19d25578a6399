package models

import (
	"errors"
	"fmt"
)

// Phase identifies where in the consultation sequence a role belongs.
// Phases execute strictly in order: Analysis, then Implementation, then
// Verification. Roles within a phase are independent of each other.
type Phase string

const (
	PhaseAnalysis       Phase = "analysis"
	PhaseImplementation Phase = "implementation"
	PhaseVerification   Phase = "verification"
)

// OrderedPhases lists all phases in execution order.
var OrderedPhases = []Phase{PhaseAnalysis, PhaseImplementation, PhaseVerification}

// ParsePhase converts a string to a Phase, rejecting unknown values.
func ParsePhase(s string) (Phase, error) {
	switch Phase(s) {
	case PhaseAnalysis, PhaseImplementation, PhaseVerification:
		return Phase(s), nil
	}
	return "", fmt.Errorf("unknown phase %q (valid: analysis, implementation, verification)", s)
}

// Role is a single specialist consultation unit in the catalog.
// Roles form a forest: each role has at most one authority parent
// (ReportsTo); a role with an empty ReportsTo is a team lead or an
// independent role.
type Role struct {
	Name                 string   `yaml:"name"`
	Domain               string   `yaml:"domain"`
	Phase                Phase    `yaml:"phase"`
	ReportsTo            string   `yaml:"reports_to"`
	Consults             []string `yaml:"consults"`
	Owns                 []string `yaml:"owns"`
	AlwaysRequired       bool     `yaml:"always_required"`
	RequiresConfirmation bool     `yaml:"requires_confirmation"`
	ExclusiveLead        bool     `yaml:"exclusive_lead"`
}

// Validate checks that the role carries the fields every catalog entry needs.
func (r *Role) Validate() error {
	if r.Name == "" {
		return errors.New("role name is required")
	}
	if r.Domain == "" {
		return fmt.Errorf("role %s: domain is required", r.Name)
	}
	if _, err := ParsePhase(string(r.Phase)); err != nil {
		return fmt.Errorf("role %s: %w", r.Name, err)
	}
	if r.ReportsTo == r.Name {
		return fmt.Errorf("role %s: reports_to must not reference itself", r.Name)
	}
	return nil
}

// IsLead reports whether the role sits at the root of its authority chain.
func (r *Role) IsLead() bool {
	return r.ReportsTo == ""
}

// TagMatch is one domain tag matched against a request, with an advisory
// strength (number of distinct phrases that hit). Tag presence is boolean
// per request; strength never affects correctness.
type TagMatch struct {
	Tag      string
	Strength int
}

// RequiredRoleSet is the resolved, phase-partitioned set of roles a request
// must consult. Membership is closed upward: if a non-root role is present,
// its whole authority chain is present too.
type RequiredRoleSet struct {
	Phases map[Phase][]string

	// PendingConfirmation lists roles that resolution wanted but removed
	// because the request carries no recorded confirmation for them. The
	// need is surfaced, never silently dropped.
	PendingConfirmation []string
}

// Contains reports whether the named role is present in any phase.
func (s *RequiredRoleSet) Contains(role string) bool {
	for _, roles := range s.Phases {
		for _, r := range roles {
			if r == role {
				return true
			}
		}
	}
	return false
}

// All returns every role in the set across all phases.
func (s *RequiredRoleSet) All() []string {
	var out []string
	for _, phase := range OrderedPhases {
		out = append(out, s.Phases[phase]...)
	}
	return out
}

// PhaseGroup is one step of an invocation sequence: a set of roles that may
// be consulted concurrently, executed strictly after the previous group.
type PhaseGroup struct {
	Phase Phase
	Roles []string
}
