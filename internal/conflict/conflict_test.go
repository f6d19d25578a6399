package conflict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/steward/internal/models"
)

func TestDetectStructuralCleanCatalog(t *testing.T) {
	roles := []models.Role{
		{Name: "backend-lead", Domain: "x", Phase: models.PhaseImplementation, ExclusiveLead: true, Consults: []string{"database"}},
		{Name: "database", Domain: "x", Phase: models.PhaseImplementation, ReportsTo: "backend-lead"},
		{Name: "reviewer", Domain: "x", Phase: models.PhaseVerification, AlwaysRequired: true},
	}

	assert.Empty(t, DetectStructural(roles))
}

func TestDetectAuthorityCycle(t *testing.T) {
	roles := []models.Role{
		{Name: "a", Domain: "x", Phase: models.PhaseAnalysis, ReportsTo: "b"},
		{Name: "b", Domain: "x", Phase: models.PhaseAnalysis, ReportsTo: "a"},
	}

	records := DetectStructural(roles)
	require.NotEmpty(t, records)
	assert.Equal(t, models.ConflictAuthorityCycle, records[0].Kind)
}

func TestDetectMissingDependency(t *testing.T) {
	roles := []models.Role{
		{Name: "database", Domain: "x", Phase: models.PhaseImplementation, ReportsTo: "backend-lead"},
		{Name: "planner", Domain: "x", Phase: models.PhaseAnalysis, Consults: []string{"ghost"}},
	}

	records := DetectStructural(roles)
	require.Len(t, records, 2)
	for _, r := range records {
		assert.Equal(t, models.ConflictMissingDependency, r.Kind)
	}
}

func TestDetectAncestorInvocation(t *testing.T) {
	// Y is X's authority parent and X's consultation list names Y:
	// flagged, never silently fixed.
	roles := []models.Role{
		{Name: "y", Domain: "x", Phase: models.PhaseImplementation},
		{Name: "x", Domain: "x", Phase: models.PhaseImplementation, ReportsTo: "y", Consults: []string{"y"}},
	}

	records := DetectStructural(roles)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictAuthorityCycle, records[0].Kind)
	assert.Equal(t, "x", records[0].RoleA)
	assert.Equal(t, "y", records[0].RoleB)
	assert.NotEmpty(t, records[0].Escalation)
}

func TestDetectSharedSubordinateOfExclusiveLeads(t *testing.T) {
	roles := []models.Role{
		{Name: "backend-lead", Domain: "x", Phase: models.PhaseImplementation, ExclusiveLead: true, Consults: []string{"database"}},
		{Name: "data-lead", Domain: "x", Phase: models.PhaseImplementation, ExclusiveLead: true, Consults: []string{"database"}},
		{Name: "database", Domain: "x", Phase: models.PhaseImplementation},
	}

	records := DetectStructural(roles)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictContradictoryConstraint, records[0].Kind)
	assert.Contains(t, records[0].Detail, "database")
}

func TestDetectOwnershipOverlap(t *testing.T) {
	roles := []models.Role{
		{Name: "backend-lead", Domain: "x", Phase: models.PhaseImplementation, Owns: []string{"api-contracts", "auth"}},
		{Name: "security-auditor", Domain: "x", Phase: models.PhaseVerification, Owns: []string{"auth"}},
	}

	records := DetectStructural(roles)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictContradictoryConstraint, records[0].Kind)
	assert.Contains(t, records[0].Detail, `"auth"`)
}

func TestDetectFromOutputs(t *testing.T) {
	outputs := []models.ConsultationOutput{
		{Role: "backend-lead", Constraints: []string{"Use Redis for session storage.", "keep handlers thin"}},
		{Role: "security-auditor", Constraints: []string{"Never use Redis for session storage"}},
	}

	records := DetectFromOutputs(outputs)
	require.Len(t, records, 1)
	assert.Equal(t, models.ConflictContradictoryConstraint, records[0].Kind)
	assert.Equal(t, "backend-lead", records[0].RoleA)
	assert.Equal(t, "security-auditor", records[0].RoleB)
}

func TestDetectFromOutputsNegationVariants(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"never", "use system x", "never use system x", true},
		{"do not", "use system x", "do not use system x", true},
		{"dont", "use system x", "don't use system x", true},
		{"avoid", "use system x", "avoid use system x", true},
		{"double negation agrees", "never use system x", "avoid use system x", false},
		{"unrelated", "use system x", "never use system y", false},
		{"agreement", "use system x", "use system x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := DetectFromOutputs([]models.ConsultationOutput{
				{Role: "a", Constraints: []string{tt.a}},
				{Role: "b", Constraints: []string{tt.b}},
			})
			if tt.want {
				assert.Len(t, records, 1)
			} else {
				assert.Empty(t, records)
			}
		})
	}
}

func TestDetectFromOutputsIgnoresSameRole(t *testing.T) {
	records := DetectFromOutputs([]models.ConsultationOutput{
		{Role: "a", Constraints: []string{"use system x", "never use system x"}},
	})
	assert.Empty(t, records)
}
