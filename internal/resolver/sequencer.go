package resolver

import "github.com/harrison/steward/internal/models"

// Sequence orders a resolved role set into consultation phases. Phases
// run strictly in order analysis -> implementation -> verification; roles
// inside one group are independent and may be consulted concurrently by
// the caller. Phase placement is the role's static catalog attribute, so
// a verification role never surfaces earlier no matter which tags pulled
// it in. Empty phases are omitted.
func Sequence(set *models.RequiredRoleSet) []models.PhaseGroup {
	var groups []models.PhaseGroup
	for _, phase := range models.OrderedPhases {
		roles := set.Phases[phase]
		if len(roles) == 0 {
			continue
		}
		groups = append(groups, models.PhaseGroup{Phase: phase, Roles: roles})
	}
	return groups
}
