package models

import (
	"testing"
	"time"
)

func TestRoleValidate(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		wantErr bool
	}{
		{
			name: "valid lead",
			role: Role{Name: "backend-lead", Domain: "Server-side code", Phase: PhaseImplementation},
		},
		{
			name:    "missing name",
			role:    Role{Domain: "x", Phase: PhaseAnalysis},
			wantErr: true,
		},
		{
			name:    "missing domain",
			role:    Role{Name: "x", Phase: PhaseAnalysis},
			wantErr: true,
		},
		{
			name:    "bad phase",
			role:    Role{Name: "x", Domain: "y", Phase: "deployment"},
			wantErr: true,
		},
		{
			name:    "self parent",
			role:    Role{Name: "x", Domain: "y", Phase: PhaseAnalysis, ReportsTo: "x"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.role.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPlanTransitionTable(t *testing.T) {
	valid := [][2]PlanStatus{
		{StatusDraft, StatusPendingApproval},
		{StatusPendingApproval, StatusApproved},
		{StatusApproved, StatusInProgress},
		{StatusInProgress, StatusCompleted},
		{StatusCompleted, StatusArchived},
	}
	for _, pair := range valid {
		if !CanTransition(pair[0], pair[1]) {
			t.Errorf("CanTransition(%s, %s) = false, want true", pair[0], pair[1])
		}
	}

	invalid := [][2]PlanStatus{
		{StatusCompleted, StatusInProgress},
		{StatusArchived, StatusDraft},
		{StatusDraft, StatusApproved},
		{StatusPendingApproval, StatusInProgress},
		{StatusInProgress, StatusDraft},
	}
	for _, pair := range invalid {
		if CanTransition(pair[0], pair[1]) {
			t.Errorf("CanTransition(%s, %s) = true, want false", pair[0], pair[1])
		}
	}
}

func TestPlanTransitionRejectsIncompleteTasks(t *testing.T) {
	plan := &Plan{
		Status: StatusInProgress,
		Tasks: []PlanTask{
			{Number: 1, Description: "first", Done: true},
			{Number: 2, Description: "second"},
		},
	}

	err := plan.Transition(StatusCompleted)
	if err == nil {
		t.Fatal("Transition to completed should fail with incomplete tasks")
	}
	if plan.Status != StatusInProgress {
		t.Errorf("status = %s, want unchanged in_progress", plan.Status)
	}

	plan.Tasks[1].Done = true
	if err := plan.Transition(StatusCompleted); err != nil {
		t.Fatalf("Transition with all tasks done: %v", err)
	}
}

func TestArchivedPlanIsImmutable(t *testing.T) {
	plan := &Plan{Status: StatusArchived}
	for _, to := range []PlanStatus{StatusDraft, StatusInProgress, StatusCompleted} {
		if err := plan.Transition(to); err == nil {
			t.Errorf("Transition(archived -> %s) should fail", to)
		}
	}
}

func TestReportStaleness(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	report := &ValidationReport{GeneratedAt: now.Add(-30 * time.Minute), Status: ReportPass}

	if report.IsStale(time.Hour, now) {
		t.Error("report within window should not be stale")
	}
	if !report.IsStale(10*time.Minute, now) {
		t.Error("report outside window should be stale")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		results []ReadinessResult
		want    ReadinessClass
		code    int
	}{
		{
			name: "all pass",
			results: []ReadinessResult{
				{Name: "git", Severity: SeverityPass},
				{Name: "config", Severity: SeverityInfo},
			},
			want: ClassReady,
			code: 0,
		},
		{
			name: "critical failure dominates optional passes",
			results: []ReadinessResult{
				{Name: "git", Severity: SeverityFail, Critical: true},
				{Name: "a", Severity: SeverityPass},
				{Name: "b", Severity: SeverityPass},
				{Name: "c", Severity: SeverityPass},
			},
			want: ClassCriticalFailure,
			code: 1,
		},
		{
			name: "optional failure is non-fatal",
			results: []ReadinessResult{
				{Name: "git", Severity: SeverityPass},
				{Name: "rg", Severity: SeverityFail},
			},
			want: ClassPassedWithWarnings,
			code: 2,
		},
		{
			name: "warnings only",
			results: []ReadinessResult{
				{Name: "git", Severity: SeverityPass},
				{Name: "auth", Severity: SeverityWarn},
			},
			want: ClassPassedWithWarnings,
			code: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := Classify(tt.results)
			if summary.Class != tt.want {
				t.Errorf("Classify() class = %s, want %s", summary.Class, tt.want)
			}
			if summary.Class.ExitCode() != tt.code {
				t.Errorf("ExitCode() = %d, want %d", summary.Class.ExitCode(), tt.code)
			}
		})
	}
}

func TestRequiredRoleSetAccessors(t *testing.T) {
	set := &RequiredRoleSet{Phases: map[Phase][]string{
		PhaseAnalysis:     {"planner"},
		PhaseVerification: {"reviewer", "validator"},
	}}

	if !set.Contains("reviewer") {
		t.Error("Contains(reviewer) = false, want true")
	}
	if set.Contains("backend") {
		t.Error("Contains(backend) = true, want false")
	}

	all := set.All()
	if len(all) != 3 {
		t.Errorf("All() returned %d roles, want 3", len(all))
	}
	// Analysis roles come before verification roles.
	if all[0] != "planner" {
		t.Errorf("All()[0] = %s, want planner", all[0])
	}
}
