package workflow

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/steward/internal/models"
)

func testTasks() []models.PlanTask {
	return []models.PlanTask{
		{Number: 1, Description: "Design the schema change", Roles: []string{"database", "backend-lead"}},
		{Number: 2, Description: "Implement the endpoint", Roles: []string{"backend-lead"}},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(t.TempDir())
}

func TestRenderParseRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	plan := &models.Plan{
		ID:        "abc-123",
		Request:   "add user authentication",
		Status:    models.StatusInProgress,
		CreatedAt: at,
		Tasks: []models.PlanTask{
			{Number: 1, Description: "Design", Roles: []string{"planner"}, Done: true, ConfirmedBy: "alice", CompletedAt: &at},
			{Number: 2, Description: "Implement", Roles: []string{"backend-lead"}},
		},
	}

	parsed, err := ParsePlan(RenderPlan(plan))
	require.NoError(t, err)

	assert.Equal(t, plan.ID, parsed.ID)
	assert.Equal(t, plan.Status, parsed.Status)
	assert.Equal(t, plan.Request, parsed.Request)
	require.Len(t, parsed.Tasks, 2)
	assert.True(t, parsed.Tasks[0].Done)
	assert.Equal(t, "alice", parsed.Tasks[0].ConfirmedBy)
	assert.Equal(t, []string{"planner"}, parsed.Tasks[0].Roles)
	assert.False(t, parsed.Tasks[1].Done)
}

func TestParsePlanRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"no frontmatter", "# Change Plan\n\n## Tasks\n\n- [ ] Task 1: x\n"},
		{"bad status", "---\nstatus: cooking\n---\n\n## Tasks\n\n- [ ] Task 1: x\n"},
		{"no tasks heading", "---\nstatus: draft\n---\n\n# Plan\n\n- [ ] Task 1: x\n"},
		{"no task lines", "---\nstatus: draft\n---\n\n## Tasks\n\nnothing here\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlan([]byte(tt.content))
			assert.Error(t, err)
		})
	}
}

func TestGenerateCreatesPendingApproval(t *testing.T) {
	store := newTestStore(t)

	plan, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPendingApproval, plan.Status)
	assert.NotEmpty(t, plan.ID)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, plan.ID, loaded.ID)
}

func TestGenerateRejectsActivePlan(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Generate("first request", testTasks())
	require.NoError(t, err)

	_, err = store.Generate("second request", testTasks())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPlanActive)
}

func TestExecuteBeforeApprovalRejected(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)

	_, _, err = store.Start()
	assert.ErrorIs(t, err, ErrNotApproved)

	_, err = store.ConfirmTask(1, "alice")
	assert.ErrorIs(t, err, ErrNotApproved)
}

func TestFullLifecycle(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)

	plan, err := store.Approve()
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, plan.Status)

	plan, started, err := store.Start()
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, models.StatusInProgress, plan.Status)

	// A second start is idempotent and reports no transition.
	plan, started, err = store.Start()
	require.NoError(t, err)
	assert.False(t, started)
	assert.Equal(t, models.StatusInProgress, plan.Status)

	plan, err = store.ConfirmTask(1, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, plan.Status)
	assert.Equal(t, 1, plan.DoneCount())

	plan, err = store.ConfirmTask(2, "bob")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, plan.Status)
}

func TestConfirmTaskRequiresConfirmation(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)
	_, _, err = store.Start()
	require.NoError(t, err)

	_, err = store.ConfirmTask(1, "")
	assert.ErrorIs(t, err, ErrNoConfirmation)

	_, err = store.ConfirmTask(99, "alice")
	assert.Error(t, err)
}

func TestArchiveOnNextGeneration(t *testing.T) {
	store := newTestStore(t)
	first, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)
	_, _, err = store.Start()
	require.NoError(t, err)
	_, err = store.ConfirmTask(1, "alice")
	require.NoError(t, err)
	_, err = store.ConfirmTask(2, "alice")
	require.NoError(t, err)

	// The next generation archives the completed plan and starts fresh.
	second, err := store.Generate("new dashboard", testTasks())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.StatusPendingApproval, second.Status)

	entries, err := os.ReadDir(filepath.Join(store.dir, archiveDir))
	require.NoError(t, err)
	require.Len(t, entries, 1)

	archived, err := ParsePlan(readFile(t, filepath.Join(store.dir, archiveDir, entries[0].Name())))
	require.NoError(t, err)
	assert.Equal(t, first.ID, archived.ID)
	assert.Equal(t, models.StatusArchived, archived.Status)
	assert.NotNil(t, archived.ArchivedAt)
	// Historical filename starts with the archival timestamp.
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}-\d{2}-\d{2}-plan\.md$`, entries[0].Name())
}

func TestArchivedPlanLeftUnmodified(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)
	_, _, err = store.Start()
	require.NoError(t, err)
	_, err = store.ConfirmTask(1, "alice")
	require.NoError(t, err)
	plan, err := store.ConfirmTask(2, "alice")
	require.NoError(t, err)

	dest, err := store.Archive(plan)
	require.NoError(t, err)
	before := readFile(t, dest)

	// A whole new lifecycle leaves the archive untouched.
	_, err = store.Generate("next request", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)

	assert.Equal(t, before, readFile(t, dest))

	// Live plan is gone after archival until regenerated.
	_, err = NewStore(store.dir).Load()
	require.NoError(t, err) // the new plan exists now
}

func TestConcurrentConfirmationsBothSurvive(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)
	_, _, err = store.Start()
	require.NoError(t, err)

	// Two confirmations race on separate store handles, as two processes
	// sharing the workspace would. Neither update may be lost.
	other := NewStore(store.dir)
	done := make(chan error, 2)
	go func() {
		_, err := store.ConfirmTask(1, "alice")
		done <- err
	}()
	go func() {
		_, err := other.ConfirmTask(2, "bob")
		done <- err
	}()
	require.NoError(t, <-done)
	require.NoError(t, <-done)

	plan, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2, plan.DoneCount())
	assert.Equal(t, models.StatusCompleted, plan.Status)
	assert.Equal(t, "alice", plan.Task(1).ConfirmedBy)
	assert.Equal(t, "bob", plan.Task(2).ConfirmedBy)
}

func TestDiscardMarksPlanArchived(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)

	dest, err := store.Discard(false)
	require.NoError(t, err)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoPlan)

	kept, err := ParsePlan(readFile(t, dest))
	require.NoError(t, err)
	assert.Equal(t, models.StatusArchived, kept.Status)
	assert.NotNil(t, kept.ArchivedAt)
}

func TestDiscardInProgressNeedsForce(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Generate("add auth", testTasks())
	require.NoError(t, err)
	_, err = store.Approve()
	require.NoError(t, err)
	_, _, err = store.Start()
	require.NoError(t, err)

	_, err = store.Discard(false)
	assert.ErrorIs(t, err, ErrPlanActive)

	_, err = store.Discard(true)
	require.NoError(t, err)
}

func TestLoadNoPlan(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Load()
	assert.True(t, errors.Is(err, ErrNoPlan))
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
