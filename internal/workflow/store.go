package workflow

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/steward/internal/filelock"
	"github.com/harrison/steward/internal/models"
)

const (
	planFileName = "plan.md"
	archiveDir   = "plans"

	// archiveStamp is the filesystem-safe ISO-8601 shape used as the
	// historical filename prefix.
	archiveStamp = "2006-01-02T15-04-05"

	// lockTimeout bounds how long a mutation waits on a contending
	// process before giving up.
	lockTimeout = 10 * time.Second
)

var (
	// ErrNoPlan indicates no plan file exists in the workspace.
	ErrNoPlan = errors.New("workflow: no plan exists")

	// ErrPlanActive indicates plan generation was requested while an
	// unfinished plan is still in flight.
	ErrPlanActive = errors.New("workflow: a plan is already in progress")

	// ErrNotApproved indicates task execution was attempted before the
	// plan was approved.
	ErrNotApproved = errors.New("workflow: plan is not approved")

	// ErrNoConfirmation indicates a completion flag change without the
	// explicit confirmation the lifecycle requires.
	ErrNoConfirmation = errors.New("workflow: task completion requires explicit confirmation")
)

// Store owns the plan file in one workspace directory. Lifecycle
// transitions are not commutative, so every mutation holds the plan lock
// across the whole read-modify-write, not just the final write.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a store rooted at the workspace state directory
// (typically ".steward").
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// PlanPath returns the location of the live plan file.
func (s *Store) PlanPath() string {
	return filepath.Join(s.dir, planFileName)
}

// ArchivePath returns the historical filename a plan archived at the
// given moment would receive.
func (s *Store) ArchivePath(at time.Time) string {
	name := fmt.Sprintf("%s-%s", at.UTC().Format(archiveStamp), planFileName)
	return filepath.Join(s.dir, archiveDir, name)
}

// withLock runs fn while holding the plan lock, serializing mutations
// across processes sharing the workspace.
func (s *Store) withLock(fn func() error) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}
	lock := filelock.New(s.PlanPath() + ".lock")
	if err := lock.LockWithTimeout(lockTimeout); err != nil {
		return err
	}
	defer lock.Unlock()
	return fn()
}

// read loads the plan without taking the lock. Callers that go on to
// write must be inside withLock.
func (s *Store) read() (*models.Plan, error) {
	content, err := os.ReadFile(s.PlanPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoPlan
		}
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	plan, err := ParsePlan(content)
	if err != nil {
		return nil, err
	}
	plan.FilePath = s.PlanPath()
	return plan, nil
}

func (s *Store) write(plan *models.Plan) error {
	return filelock.AtomicWrite(s.PlanPath(), RenderPlan(plan))
}

// Load reads the current plan. ErrNoPlan when none exists. Reads need no
// lock: the atomic rename on write means a reader never sees a partial
// file.
func (s *Store) Load() (*models.Plan, error) {
	return s.read()
}

// Save writes the plan under the file lock with an atomic rename.
func (s *Store) Save(plan *models.Plan) error {
	return s.withLock(func() error {
		return s.write(plan)
	})
}

// Generate creates a new plan for a request. A completed predecessor is
// archived first; an unfinished one rejects generation so two requests
// can never interleave lifecycle transitions. The new plan is born Draft
// and immediately moves to PendingApproval.
func (s *Store) Generate(request string, tasks []models.PlanTask) (*models.Plan, error) {
	var plan *models.Plan
	err := s.withLock(func() error {
		current, err := s.read()
		switch {
		case err == nil:
			if current.Status != models.StatusCompleted {
				return fmt.Errorf("%w (status %s); complete or reset it first", ErrPlanActive, current.Status)
			}
			if _, err := s.archive(current); err != nil {
				return err
			}
		case errors.Is(err, ErrNoPlan):
			// First plan in this workspace.
		default:
			return err
		}

		plan = &models.Plan{
			ID:        uuid.NewString(),
			Request:   request,
			Status:    models.StatusDraft,
			Tasks:     tasks,
			CreatedAt: s.now().UTC(),
		}
		if err := plan.Transition(models.StatusPendingApproval); err != nil {
			return err
		}
		if err := s.write(plan); err != nil {
			return err
		}
		plan.FilePath = s.PlanPath()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Archive moves a completed plan into the archive directory under its
// timestamp-prefixed historical name. The archived copy is immutable
// from then on.
func (s *Store) Archive(plan *models.Plan) (string, error) {
	var dest string
	err := s.withLock(func() error {
		var err error
		dest, err = s.archive(plan)
		return err
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

func (s *Store) archive(plan *models.Plan) (string, error) {
	at := s.now().UTC()
	plan.ArchivedAt = &at
	if err := plan.Transition(models.StatusArchived); err != nil {
		plan.ArchivedAt = nil
		return "", err
	}

	dest := s.ArchivePath(at)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}
	if err := filelock.AtomicWrite(dest, RenderPlan(plan)); err != nil {
		return "", err
	}
	if err := os.Remove(s.PlanPath()); err != nil {
		return "", fmt.Errorf("failed to remove live plan after archival: %w", err)
	}
	return dest, nil
}

// Discard sets the live plan aside without requiring completion. The
// copy kept under the archive directory is marked archived like any
// other; discarding skips the transition table because a discard is
// legal from every live status. An in-progress plan needs force.
func (s *Store) Discard(force bool) (string, error) {
	var dest string
	err := s.withLock(func() error {
		plan, err := s.read()
		if err != nil {
			return err
		}
		if plan.Status == models.StatusInProgress && !force {
			return fmt.Errorf("%w; discarding it requires force", ErrPlanActive)
		}

		at := s.now().UTC()
		plan.ArchivedAt = &at
		plan.Status = models.StatusArchived

		dest = s.ArchivePath(at)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
		if err := filelock.AtomicWrite(dest, RenderPlan(plan)); err != nil {
			return err
		}
		if err := os.Remove(s.PlanPath()); err != nil {
			return fmt.Errorf("failed to remove live plan after discard: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return dest, nil
}

// Approve records the explicit user approval action.
func (s *Store) Approve() (*models.Plan, error) {
	return s.transition(models.StatusApproved)
}

// Start moves an approved plan into execution. Execution before approval
// is rejected with ErrNotApproved. The bool reports whether this call
// performed the transition; a plan already in progress returns false.
func (s *Store) Start() (*models.Plan, bool, error) {
	var (
		plan    *models.Plan
		started bool
	)
	err := s.withLock(func() error {
		var err error
		plan, err = s.read()
		if err != nil {
			return err
		}
		if plan.Status == models.StatusPendingApproval || plan.Status == models.StatusDraft {
			return fmt.Errorf("%w (status %s); run approve first", ErrNotApproved, plan.Status)
		}
		if plan.Status == models.StatusInProgress {
			return nil
		}
		if err := plan.Transition(models.StatusInProgress); err != nil {
			return err
		}
		started = true
		return s.write(plan)
	})
	if err != nil {
		return nil, false, err
	}
	return plan, started, nil
}

// ConfirmTask sets a task's completion flag. The flag only ever flips on
// an explicit confirmation naming who verified the work; nothing is
// inferred from code changes. When the last task completes, the plan
// transitions to Completed.
func (s *Store) ConfirmTask(number int, confirmedBy string) (*models.Plan, error) {
	if confirmedBy == "" {
		return nil, ErrNoConfirmation
	}

	var plan *models.Plan
	err := s.withLock(func() error {
		var err error
		plan, err = s.read()
		if err != nil {
			return err
		}
		if plan.Status != models.StatusInProgress {
			if plan.Status == models.StatusPendingApproval || plan.Status == models.StatusDraft {
				return fmt.Errorf("%w (status %s)", ErrNotApproved, plan.Status)
			}
			return fmt.Errorf("%w: cannot confirm tasks in status %s", models.ErrInvalidTransition, plan.Status)
		}

		task := plan.Task(number)
		if task == nil {
			return fmt.Errorf("task %d not found in plan", number)
		}
		at := s.now().UTC()
		task.Done = true
		task.ConfirmedBy = confirmedBy
		task.CompletedAt = &at

		if plan.AllTasksDone() {
			if err := plan.Transition(models.StatusCompleted); err != nil {
				return err
			}
		}
		return s.write(plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *Store) transition(to models.PlanStatus) (*models.Plan, error) {
	var plan *models.Plan
	err := s.withLock(func() error {
		var err error
		plan, err = s.read()
		if err != nil {
			return err
		}
		if err := plan.Transition(to); err != nil {
			return err
		}
		return s.write(plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
