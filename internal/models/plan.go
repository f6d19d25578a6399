package models

import (
	"errors"
	"fmt"
	"time"
)

// PlanStatus is the lifecycle state of a persisted plan.
type PlanStatus string

const (
	StatusDraft           PlanStatus = "draft"
	StatusPendingApproval PlanStatus = "pending_approval"
	StatusApproved        PlanStatus = "approved"
	StatusInProgress      PlanStatus = "in_progress"
	StatusCompleted       PlanStatus = "completed"
	StatusArchived        PlanStatus = "archived"
)

// ParsePlanStatus converts a string to a PlanStatus, rejecting unknown values.
func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(s) {
	case StatusDraft, StatusPendingApproval, StatusApproved,
		StatusInProgress, StatusCompleted, StatusArchived:
		return PlanStatus(s), nil
	}
	return "", fmt.Errorf("unknown plan status %q", s)
}

// planTransitions is the single authoritative transition table. Anything
// absent here is an invalid transition.
var planTransitions = map[PlanStatus][]PlanStatus{
	StatusDraft:           {StatusPendingApproval},
	StatusPendingApproval: {StatusApproved},
	StatusApproved:        {StatusInProgress},
	StatusInProgress:      {StatusCompleted},
	StatusCompleted:       {StatusArchived},
}

// ErrInvalidTransition indicates a lifecycle transition the table does not
// permit. The plan's current state is left unchanged.
var ErrInvalidTransition = errors.New("invalid plan transition")

// CanTransition reports whether the lifecycle permits moving from one
// status to another.
func CanTransition(from, to PlanStatus) bool {
	for _, next := range planTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PlanTask is one checklist entry in a plan. Done may only become true via
// an explicit external confirmation, recorded in ConfirmedBy.
type PlanTask struct {
	Number      int
	Description string
	Roles       []string
	Done        bool
	ConfirmedBy string
	CompletedAt *time.Time
}

// Plan is the persisted, stateful checklist representing one change
// request's lifecycle.
type Plan struct {
	ID        string
	Request   string
	Status    PlanStatus
	Tasks     []PlanTask
	CreatedAt time.Time

	// ArchivedAt is set once the plan has been archived and forms the
	// timestamp prefix of its historical filename.
	ArchivedAt *time.Time

	FilePath string
}

// Transition moves the plan to the requested status, enforcing the
// lifecycle table. On rejection the plan is returned unchanged inside the
// error path: status is not mutated.
func (p *Plan) Transition(to PlanStatus) error {
	if p.Status == StatusArchived {
		return fmt.Errorf("%w: archived plans are immutable", ErrInvalidTransition)
	}
	if !CanTransition(p.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, to)
	}
	if to == StatusCompleted && !p.AllTasksDone() {
		return fmt.Errorf("%w: %d of %d tasks incomplete", ErrInvalidTransition,
			len(p.Tasks)-p.DoneCount(), len(p.Tasks))
	}
	p.Status = to
	return nil
}

// AllTasksDone reports whether every task's completion flag is set.
func (p *Plan) AllTasksDone() bool {
	for _, t := range p.Tasks {
		if !t.Done {
			return false
		}
	}
	return len(p.Tasks) > 0
}

// DoneCount returns the number of completed tasks.
func (p *Plan) DoneCount() int {
	n := 0
	for _, t := range p.Tasks {
		if t.Done {
			n++
		}
	}
	return n
}

// Task returns the task with the given number, or nil.
func (p *Plan) Task(number int) *PlanTask {
	for i := range p.Tasks {
		if p.Tasks[i].Number == number {
			return &p.Tasks[i]
		}
	}
	return nil
}
