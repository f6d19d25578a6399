// Package conflict inspects the role catalog and completed consultation
// outputs for contradictions. Every finding is returned as a typed record
// for human escalation; the detector never resolves anything on the
// user's behalf.
package conflict

import (
	"fmt"
	"sort"

	"github.com/harrison/steward/internal/models"
)

// DetectStructural runs the load-time structural checks over raw role
// definitions. It works on definitions rather than a loaded registry so
// tooling can report on a catalog the registry would refuse to load.
//
// Checks:
//   - authority cycles, and roles that invoke one of their own ancestors;
//   - references to roles that do not exist;
//   - one role consulted by more than one mutually exclusive team lead;
//   - two roles claiming exclusive ownership of the same area.
func DetectStructural(roles []models.Role) []models.ConflictRecord {
	byName := make(map[string]*models.Role, len(roles))
	for i := range roles {
		byName[roles[i].Name] = &roles[i]
	}

	var records []models.ConflictRecord
	records = append(records, detectCycles(roles, byName)...)
	records = append(records, detectMissing(roles, byName)...)
	records = append(records, detectAncestorInvocation(roles, byName)...)
	records = append(records, detectSharedSubordinates(roles, byName)...)
	records = append(records, detectOwnershipOverlap(roles)...)
	return records
}

func detectCycles(roles []models.Role, byName map[string]*models.Role) []models.ConflictRecord {
	var records []models.ConflictRecord
	reported := make(map[string]bool)

	for _, role := range roles {
		seen := map[string]bool{role.Name: true}
		node := byName[role.Name]
		for node != nil && node.ReportsTo != "" {
			next, ok := byName[node.ReportsTo]
			if !ok {
				break
			}
			if seen[next.Name] {
				if !reported[next.Name] {
					reported[next.Name] = true
					records = append(records, models.ConflictRecord{
						Kind:       models.ConflictAuthorityCycle,
						RoleA:      node.Name,
						RoleB:      next.Name,
						Detail:     fmt.Sprintf("authority chain of %s loops back through %s", role.Name, next.Name),
						Escalation: "break the reports_to cycle in the role catalog before the governor can start",
					})
				}
				break
			}
			seen[next.Name] = true
			node = next
		}
	}
	return records
}

func detectMissing(roles []models.Role, byName map[string]*models.Role) []models.ConflictRecord {
	var records []models.ConflictRecord
	for _, role := range roles {
		if role.ReportsTo != "" {
			if _, ok := byName[role.ReportsTo]; !ok {
				records = append(records, models.ConflictRecord{
					Kind:       models.ConflictMissingDependency,
					RoleA:      role.Name,
					RoleB:      role.ReportsTo,
					Detail:     fmt.Sprintf("%s reports to %s, which is not in the catalog", role.Name, role.ReportsTo),
					Escalation: "add the missing role or fix the reports_to reference",
				})
			}
		}
		for _, consulted := range role.Consults {
			if _, ok := byName[consulted]; !ok {
				records = append(records, models.ConflictRecord{
					Kind:       models.ConflictMissingDependency,
					RoleA:      role.Name,
					RoleB:      consulted,
					Detail:     fmt.Sprintf("%s consults %s, which is not in the catalog", role.Name, consulted),
					Escalation: "add the missing role or remove it from the consults list",
				})
			}
		}
	}
	return records
}

// detectAncestorInvocation flags a role whose consults list contains one
// of its own ancestors. The parent-of relation only works downward; a
// sub-role invoking its root is an authority cycle in consultation form.
func detectAncestorInvocation(roles []models.Role, byName map[string]*models.Role) []models.ConflictRecord {
	var records []models.ConflictRecord
	for _, role := range roles {
		ancestors := make(map[string]bool)
		node := byName[role.Name]
		seen := map[string]bool{role.Name: true}
		for node != nil && node.ReportsTo != "" {
			next, ok := byName[node.ReportsTo]
			if !ok || seen[next.Name] {
				break
			}
			ancestors[next.Name] = true
			seen[next.Name] = true
			node = next
		}

		for _, consulted := range role.Consults {
			if ancestors[consulted] {
				records = append(records, models.ConflictRecord{
					Kind:       models.ConflictAuthorityCycle,
					RoleA:      role.Name,
					RoleB:      consulted,
					Detail:     fmt.Sprintf("%s invokes its own ancestor %s", role.Name, consulted),
					Escalation: "decide which direction the authority runs; a role must not invoke its root",
				})
			}
		}
	}
	return records
}

func detectSharedSubordinates(roles []models.Role, byName map[string]*models.Role) []models.ConflictRecord {
	consultedBy := make(map[string][]string)
	for _, role := range roles {
		if !role.ExclusiveLead {
			continue
		}
		for _, consulted := range role.Consults {
			consultedBy[consulted] = append(consultedBy[consulted], role.Name)
		}
	}

	var names []string
	for name, leads := range consultedBy {
		if len(leads) > 1 {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var records []models.ConflictRecord
	for _, name := range names {
		leads := consultedBy[name]
		sort.Strings(leads)
		records = append(records, models.ConflictRecord{
			Kind:       models.ConflictContradictoryConstraint,
			RoleA:      leads[0],
			RoleB:      leads[1],
			Detail:     fmt.Sprintf("mutually exclusive leads both consult %s", name),
			Escalation: fmt.Sprintf("decide which lead owns consultations of %s", name),
		})
	}
	return records
}

func detectOwnershipOverlap(roles []models.Role) []models.ConflictRecord {
	var records []models.ConflictRecord
	for i := 0; i < len(roles); i++ {
		for j := i + 1; j < len(roles); j++ {
			for _, area := range roles[i].Owns {
				if containsString(roles[j].Owns, area) {
					records = append(records, models.ConflictRecord{
						Kind:       models.ConflictContradictoryConstraint,
						RoleA:      roles[i].Name,
						RoleB:      roles[j].Name,
						Detail:     fmt.Sprintf("both claim exclusive ownership of %q", area),
						Escalation: fmt.Sprintf("assign %q to exactly one role", area),
					})
				}
			}
		}
	}
	return records
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
