// ABOUTME: Task lifecycle state machine: create, complete, reopen, delete, bulk-close, and merge-patch update.
// ABOUTME: All business-rule checks run before any write; each mutation returns the events it produced.

package hd

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// CreateOptions are the optional fields accepted at task creation.
type CreateOptions struct {
	Assignee        string
	OwningTeam      string
	DueAt           *time.Time
	DependsOnTaskID string
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fieldErr("title", ErrTitleRequired)
	}
	if len(title) > maxTitleLength {
		return fieldErr("title", ErrTitleTooLong)
	}
	return nil
}

// CreateTicket records a minimal owning ticket for tasks.
func (e *Engine) CreateTicket(subject, actor string) (*Ticket, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, fieldErr("subject", ErrTitleRequired)
	}
	ticket := &Ticket{
		ID:        e.newID(),
		Subject:   subject,
		CreatedBy: actor,
		CreatedAt: e.now(),
	}
	if err := e.db.Create(ticket).Error; err != nil {
		return nil, fmt.Errorf("failed to create ticket: %w", err)
	}
	return ticket, nil
}

// CreateTask adds a new open task at the end of the ticket's checklist.
func (e *Engine) CreateTask(ticketID, title, actor string, opts CreateOptions) (*Task, []Event, error) {
	if err := validateTitle(title); err != nil {
		return nil, nil, err
	}

	var created *Task
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		if _, err := findTicket(tx, ticketID); err != nil {
			return nil, err
		}
		next, err := maxSortOrder(tx, ticketID)
		if err != nil {
			return nil, err
		}

		task := &Task{
			ID:         e.newID(),
			TicketID:   ticketID,
			Title:      title,
			Status:     StatusOpen,
			SortOrder:  next + 1,
			Assignee:   opts.Assignee,
			OwningTeam: opts.OwningTeam,
			DueAt:      opts.DueAt,
			CreatedBy:  actor,
		}
		if opts.DependsOnTaskID != "" {
			if err := validateDependency(tx, task, opts.DependsOnTaskID); err != nil {
				return nil, fieldErr("depends_on_task_id", err)
			}
			dep := opts.DependsOnTaskID
			task.DependsOnTaskID = &dep
		}
		if err := tx.Create(task).Error; err != nil {
			return nil, fmt.Errorf("failed to create task: %w", err)
		}
		created = task
		return []Event{e.newEvent(EventTaskCreated, task, actor, nil)}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, events, nil
}

// isBlocked derives the blocked predicate: a set predecessor that is not yet
// closed. Deleted predecessors cannot occur, Delete clears dependents' edges
// in the same transaction.
func isBlocked(tx *gorm.DB, task *Task) (bool, error) {
	if task.DependsOnTaskID == nil {
		return false, nil
	}
	predecessor, err := findTask(tx, *task.DependsOnTaskID)
	if err != nil {
		return false, err
	}
	return predecessor.Status != StatusClosed, nil
}

// CompleteTask closes an open, unblocked task and reports which dependents
// that unblocks.
func (e *Engine) CompleteTask(taskID, actor string) (*Task, []Event, error) {
	var completed *Task
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		task, err := findTask(tx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Status == StatusClosed {
			return nil, fieldErr("status", ErrAlreadyClosed)
		}
		blocked, err := isBlocked(tx, task)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, fieldErr("status", ErrTaskBlocked)
		}

		now := e.now()
		task.Status = StatusClosed
		task.ClosedAt = &now
		task.ClosedBy = actor
		if err := saveTask(tx, task); err != nil {
			return nil, err
		}
		completed = task

		events := []Event{e.newEvent(EventTaskCompleted, task, actor, nil)}
		dependents, err := dependentsOf(tx, task.ID)
		if err != nil {
			return nil, err
		}
		for _, dependent := range dependents {
			if dependent.Status == StatusOpen {
				events = append(events, e.newEvent(EventTaskUnblocked, dependent, actor, nil))
			}
		}
		return events, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return completed, events, nil
}

// ReopenTask returns a closed task to open. Dependents that were unblocked by
// its completion become blocked again purely by re-derivation on read.
func (e *Engine) ReopenTask(taskID, actor string) (*Task, []Event, error) {
	var reopened *Task
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		task, err := findTask(tx, taskID)
		if err != nil {
			return nil, err
		}
		if task.Status != StatusClosed {
			return nil, fieldErr("status", ErrNotClosed)
		}

		task.Status = StatusOpen
		task.ClosedAt = nil
		task.ClosedBy = ""
		if err := saveTask(tx, task); err != nil {
			return nil, err
		}
		reopened = task
		return []Event{e.newEvent(EventTaskReopened, task, actor, nil)}, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return reopened, events, nil
}

// BulkCloseTasks completes every non-closed task on the ticket, bypassing the
// blocked check. Used when a ticket closure cascades over its checklist.
func (e *Engine) BulkCloseTasks(ticketID, actor string) (int, []Event, error) {
	closed := 0
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		if _, err := findTicket(tx, ticketID); err != nil {
			return nil, err
		}
		var open []*Task
		err := tx.Where("ticket_id = ? AND status <> ?", ticketID, StatusClosed).
			Order("sort_order").Find(&open).Error
		if err != nil {
			return nil, err
		}

		now := e.now()
		var events []Event
		for _, task := range open {
			task.Status = StatusClosed
			task.ClosedAt = &now
			task.ClosedBy = actor
			if err := saveTask(tx, task); err != nil {
				return nil, err
			}
			events = append(events, e.newEvent(EventTaskCompleted, task, actor, nil))
			closed++
		}
		return events, nil
	})
	if err != nil {
		return 0, nil, err
	}
	return closed, events, nil
}

// DeleteTask soft-deletes a task. Dependents never keep a dangling edge:
// their predecessor reference is cleared first, unblocking any that are open.
func (e *Engine) DeleteTask(taskID, actor string) ([]Event, error) {
	return e.mutate(func(tx *gorm.DB) ([]Event, error) {
		task, err := findTask(tx, taskID)
		if err != nil {
			return nil, err
		}

		var events []Event
		dependents, err := dependentsOf(tx, task.ID)
		if err != nil {
			return nil, err
		}
		for _, dependent := range dependents {
			dependent.DependsOnTaskID = nil
			if err := saveTask(tx, dependent); err != nil {
				return nil, err
			}
			if dependent.Status == StatusOpen {
				events = append(events, e.newEvent(EventTaskUnblocked, dependent, actor, nil))
			}
		}

		task.DeletedBy = actor
		if err := saveTask(tx, task); err != nil {
			return nil, err
		}
		if err := tx.Delete(&Task{}, "id = ?", task.ID).Error; err != nil {
			return nil, fmt.Errorf("failed to delete task: %w", err)
		}

		evt := e.newEvent(EventTaskDeleted, task, actor, TaskDeletedData{
			TicketID: task.TicketID,
			Title:    task.Title,
			Assignee: task.Assignee,
		})
		evt.Task = nil
		return append(events, evt), nil
	})
}

// TaskPatch is a merge patch for UpdateTask. Clearing is always an explicit
// flag, never an overloaded zero value.
type TaskPatch struct {
	Title *string

	// Ownership intents: Unassign clears both owners; Assignee with no
	// OwningTeam infers the team from the individual's membership;
	// ClearAssignee drops only the individual (team-only assignment).
	Unassign      bool
	ClearAssignee bool
	Assignee      *string
	OwningTeam    *string

	DueAt    *time.Time
	ClearDue bool

	DependsOnTaskID *string
	ClearDependsOn  bool
}

// UpdateTask applies a merge patch to one task. Every check runs before any
// field is written, so a rejection leaves the task untouched.
func (e *Engine) UpdateTask(taskID string, patch TaskPatch, actor string) (*Task, []Event, error) {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, nil, err
		}
	}

	var updated *Task
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		task, err := findTask(tx, taskID)
		if err != nil {
			return nil, err
		}
		if patch.DependsOnTaskID != nil {
			if err := validateDependency(tx, task, *patch.DependsOnTaskID); err != nil {
				return nil, fieldErr("depends_on_task_id", err)
			}
		}

		prevAssignee := task.Assignee
		prevTeam := task.OwningTeam
		prevDue := task.DueAt
		prevDep := task.DependsOnTaskID

		if patch.Title != nil {
			task.Title = *patch.Title
		}

		switch {
		case patch.Unassign:
			task.Assignee = ""
			task.OwningTeam = ""
		case patch.Assignee != nil:
			task.Assignee = *patch.Assignee
			if patch.OwningTeam != nil {
				task.OwningTeam = *patch.OwningTeam
			} else {
				teams, err := e.teams.TeamsForUser(*patch.Assignee)
				if err != nil {
					return nil, err
				}
				if len(teams) > 0 {
					task.OwningTeam = teams[0]
				} else {
					task.OwningTeam = ""
				}
			}
		case patch.OwningTeam != nil:
			task.OwningTeam = *patch.OwningTeam
			if patch.ClearAssignee {
				task.Assignee = ""
			}
		case patch.ClearAssignee:
			task.Assignee = ""
		}

		if patch.ClearDue {
			task.DueAt = nil
		} else if patch.DueAt != nil {
			due := *patch.DueAt
			task.DueAt = &due
		}

		if patch.ClearDependsOn {
			task.DependsOnTaskID = nil
		} else if patch.DependsOnTaskID != nil {
			dep := *patch.DependsOnTaskID
			task.DependsOnTaskID = &dep
		}

		if err := saveTask(tx, task); err != nil {
			return nil, err
		}
		updated = task

		var events []Event
		if task.Assignee != prevAssignee || task.OwningTeam != prevTeam {
			events = append(events, e.newEvent(EventTaskAssigned, task, actor, TaskAssignedData{
				PrevAssignee:   prevAssignee,
				PrevOwningTeam: prevTeam,
			}))
		}
		if !timePtrEqual(task.DueAt, prevDue) {
			events = append(events, e.newEvent(EventTaskDueDateChanged, task, actor, TaskDueDateChangedData{
				PrevDueAt: prevDue,
			}))
		}
		if !strPtrEqual(task.DependsOnTaskID, prevDep) {
			events = append(events, e.newEvent(EventTaskDependencyChanged, task, actor, TaskDependencyChangedData{
				PrevDependsOnTaskID: prevDep,
			}))
		}
		return events, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, events, nil
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
