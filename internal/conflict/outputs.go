package conflict

import (
	"fmt"
	"strings"

	"github.com/harrison/steward/internal/models"
)

// negationPrefixes are the markers that turn a constraint into its
// opposite. Matching is plain prefix stripping over normalized text, not
// language understanding: "never use redis" contradicts "use redis" and
// nothing subtler than that.
var negationPrefixes = []string{
	"never ",
	"do not ",
	"don't ",
	"avoid ",
	"no ",
}

// DetectFromOutputs compares the free-form constraints declared by
// completed consultations pairwise. A constraint and its negation from
// two different roles is reported as a contradictory constraint; the pair
// is surfaced, never arbitrated.
func DetectFromOutputs(outputs []models.ConsultationOutput) []models.ConflictRecord {
	type constraint struct {
		role string
		raw  string
		core string // normalized text with any negation stripped
		neg  bool
	}

	var all []constraint
	for _, out := range outputs {
		for _, raw := range out.Constraints {
			core, neg := normalize(raw)
			if core == "" {
				continue
			}
			all = append(all, constraint{role: out.Role, raw: raw, core: core, neg: neg})
		}
	}

	var records []models.ConflictRecord
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.role == b.role {
				continue
			}
			if a.core == b.core && a.neg != b.neg {
				records = append(records, models.ConflictRecord{
					Kind:       models.ConflictContradictoryConstraint,
					RoleA:      a.role,
					RoleB:      b.role,
					Detail:     fmt.Sprintf("%q contradicts %q", a.raw, b.raw),
					Escalation: "the two consultations disagree; pick one constraint and re-run the other role",
				})
			}
		}
	}
	return records
}

// normalize lowercases and trims a constraint and strips one leading
// negation marker, reporting whether one was present.
func normalize(raw string) (string, bool) {
	text := strings.ToLower(strings.TrimSpace(raw))
	text = strings.TrimSuffix(text, ".")
	for _, prefix := range negationPrefixes {
		if strings.HasPrefix(text, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(text, prefix)), true
		}
	}
	return text, false
}
