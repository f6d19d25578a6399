// Package resolver computes the minimal required role set for a classified
// change request and orders it into invocation phases. Resolution is a
// pure function of the tag set, the matched overrides, and the recorded
// confirmation state: no I/O, no hidden state.
package resolver

import (
	"errors"
	"fmt"
	"sort"

	"github.com/harrison/steward/internal/classifier"
	"github.com/harrison/steward/internal/models"
	"github.com/harrison/steward/internal/registry"
)

// ErrMissingRequiredRole indicates the catalog defines no always-required
// roles at all. That is a registry defect, not a property of the request,
// and it is fatal.
var ErrMissingRequiredRole = errors.New("resolver: catalog defines no always-required roles")

// Resolve computes the required role set for a request.
//
// The algorithm:
//  1. start from the always-required roles, unconditionally;
//  2. union in the primary and secondary roles of every matched tag;
//  3. union in the role bundle of every matched task-pattern override;
//  4. close the set upward so every present role's authority chain is
//     present;
//  5. remove roles that require confirmation but have none recorded,
//     together with any role whose chain runs through them, and surface
//     those removals as pending-confirmation obligations.
//
// An empty tag set with no overrides still yields the always-required
// roles.
func Resolve(reg *registry.Registry, table *classifier.Table, tags []models.TagMatch,
	overrides []classifier.PatternOverride, confirmed map[string]bool) (*models.RequiredRoleSet, error) {

	always := reg.AlwaysRequired()
	if len(always) == 0 {
		return nil, ErrMissingRequiredRole
	}

	want := make(map[string]bool)
	for _, name := range always {
		want[name] = true
	}

	for _, match := range tags {
		tag, ok := table.Tag(match.Tag)
		if !ok {
			return nil, fmt.Errorf("matched tag %s has no definition in the domain table", match.Tag)
		}
		for _, name := range tag.Primary {
			want[name] = true
		}
		for _, name := range tag.Secondary {
			want[name] = true
		}
	}

	for _, ov := range overrides {
		for _, name := range ov.Roles {
			want[name] = true
		}
	}

	// Close upward: a sub-role is never consulted without its authority
	// root in the same resolution.
	for name := range copyKeys(want) {
		chain, err := reg.ResolveChain(name)
		if err != nil {
			return nil, fmt.Errorf("resolution references unknown role: %w", err)
		}
		for _, ancestor := range chain {
			want[ancestor] = true
		}
	}

	// Confirmation filtering. A role needing confirmation without one
	// recorded is removed, and so is anything that reports through it:
	// surfacing the obligation beats consulting a sub-role whose root is
	// absent.
	pendingSet := make(map[string]bool)
	for name := range want {
		role, _ := reg.Get(name)
		if role.RequiresConfirmation && !confirmed[name] && !role.AlwaysRequired {
			pendingSet[name] = true
		}
	}
	var kept []string
	for name := range want {
		chain, _ := reg.ResolveChain(name)
		blocked := false
		for _, ancestor := range chain {
			if pendingSet[ancestor] {
				blocked = true
				if ancestor != name {
					pendingSet[name] = true
				}
				break
			}
		}
		if !blocked {
			kept = append(kept, name)
		}
	}

	set := &models.RequiredRoleSet{Phases: make(map[models.Phase][]string)}
	for _, name := range kept {
		role, _ := reg.Get(name)
		set.Phases[role.Phase] = append(set.Phases[role.Phase], name)
	}
	for phase := range set.Phases {
		sort.Strings(set.Phases[phase])
	}

	for name := range pendingSet {
		set.PendingConfirmation = append(set.PendingConfirmation, name)
	}
	sort.Strings(set.PendingConfirmation)

	return set, nil
}

func copyKeys(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k := range m {
		out[k] = true
	}
	return out
}
