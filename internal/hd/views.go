// ABOUTME: Read-side view projection: per-view predicates, the blocked-hiding rule, and view sorts.
// ABOUTME: Blocked is derived in SQL by dereferencing the predecessor's current status, never stored.

package hd

import (
	"errors"
	"fmt"
	"strings"
)

// View selects the base predicate for a task list.
type View string

const (
	ViewMyTasks     View = "mine"
	ViewTeamTasks   View = "team"
	ViewUnassigned  View = "unassigned"
	ViewCreatedByMe View = "created-by-me"
	ViewOverdue     View = "overdue"
	ViewAllTasks    View = "all"
)

// IsValid checks if the view is a known built-in view
func (v View) IsValid() bool {
	switch v {
	case ViewMyTasks, ViewTeamTasks, ViewUnassigned, ViewCreatedByMe, ViewOverdue, ViewAllTasks:
		return true
	}
	return false
}

// Sortable fields for list output.
const (
	SortByDue     = "due"
	SortByCreated = "created"
	SortByOrder   = "order"
	SortByTitle   = "title"
)

// TaskQuery describes one list request.
type TaskQuery struct {
	TicketID      string
	View          View
	UserID        string
	Search        string
	IncludeClosed bool
	SortField     string
	SortDesc      bool
}

// TaskListItem is a task row plus its derived blocked flag.
type TaskListItem struct {
	Task
	Blocked bool `gorm:"column:blocked" json:"blocked"`
}

// blockedExpr matches tasks whose predecessor exists and is not yet closed.
const blockedExpr = "tasks.depends_on_task_id IS NOT NULL AND EXISTS " +
	"(SELECT 1 FROM tasks p WHERE p.id = tasks.depends_on_task_id AND p.status <> 'closed' AND p.deleted_at IS NULL)"

// ListTasks runs the view projection. Every view except AllTasks hides
// blocked tasks by default: a blocked task is not actionable by its nominal
// owner, so it stays off worklists until the predecessor closes. An active
// search (and AllTasks) is a show-me-everything context and bypasses the rule.
func (e *Engine) ListTasks(q TaskQuery) ([]TaskListItem, error) {
	view := q.View
	if view == "" {
		view = ViewAllTasks
	}
	if !view.IsValid() {
		return nil, fieldErr("view", fmt.Errorf("unknown view %q", view))
	}

	tx := e.db.Model(&Task{}).
		Select("tasks.*, (CASE WHEN " + blockedExpr + " THEN 1 ELSE 0 END) AS blocked")

	if q.TicketID != "" {
		tx = tx.Where("tasks.ticket_id = ?", q.TicketID)
	}

	switch view {
	case ViewMyTasks:
		tx = tx.Where("tasks.assignee = ?", q.UserID)
	case ViewTeamTasks:
		teams, err := e.teams.TeamsForUser(q.UserID)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			return []TaskListItem{}, nil
		}
		tx = tx.Where("tasks.owning_team IN ?", teams)
	case ViewUnassigned:
		tx = tx.Where("tasks.assignee = '' AND tasks.owning_team = ''")
	case ViewCreatedByMe:
		tx = tx.Where("tasks.created_by = ?", q.UserID)
	case ViewOverdue:
		tx = tx.Where("tasks.status = ? AND tasks.due_at IS NOT NULL AND tasks.due_at < ?", StatusOpen, e.now())
	case ViewAllTasks:
		// no base predicate
	}

	if view != ViewOverdue && !q.IncludeClosed {
		tx = tx.Where("tasks.status <> ?", StatusClosed)
	}

	search := strings.TrimSpace(q.Search)
	if search != "" {
		tx = tx.Where("tasks.title LIKE ?", "%"+search+"%")
	}

	if view != ViewAllTasks && search == "" {
		tx = tx.Where("NOT (" + blockedExpr + ")")
	}

	tx = tx.Order(orderClause(view, q.SortField, q.SortDesc))

	var items []TaskListItem
	if err := tx.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func orderClause(view View, field string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch field {
	case SortByDue:
		return "tasks.due_at IS NULL, tasks.due_at " + dir
	case SortByCreated:
		return "tasks.created_at " + dir
	case SortByOrder:
		return "tasks.sort_order " + dir
	case SortByTitle:
		return "tasks.title " + dir
	}

	// View defaults: overdue by urgency, all newest-first, the rest by due
	// date with nulls last and newest-first tie-break.
	switch view {
	case ViewOverdue:
		return "tasks.due_at ASC"
	case ViewAllTasks:
		return "tasks.created_at DESC"
	default:
		return "tasks.due_at IS NULL, tasks.due_at ASC, tasks.created_at DESC"
	}
}

// TaskDetail is the single-task read projection.
type TaskDetail struct {
	Task
	Blocked    bool     `json:"blocked"`
	Dependents []string `json:"dependents,omitempty"`
}

// GetTask loads one task with its derived blocked flag and dependent ids.
func (e *Engine) GetTask(taskID string) (*TaskDetail, error) {
	task, err := findTask(e.db, taskID)
	if err != nil {
		return nil, err
	}
	blocked, err := isBlocked(e.db, task)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	detail := &TaskDetail{Task: *task, Blocked: blocked}

	dependents, err := dependentsOf(e.db, task.ID)
	if err != nil {
		return nil, err
	}
	for _, dependent := range dependents {
		detail.Dependents = append(detail.Dependents, dependent.ID)
	}
	return detail, nil
}

// TicketStats counts a ticket's tasks by state, with blocked derived.
type TicketStats struct {
	Open    int `json:"open"`
	Blocked int `json:"blocked"`
	Closed  int `json:"closed"`
	Total   int `json:"total"`
}

// Stats reports open/blocked/closed counts for one ticket. Blocked tasks are
// counted inside Open as well, blocked is a visibility state layered on open.
func (e *Engine) Stats(ticketID string) (*TicketStats, error) {
	if _, err := findTicket(e.db, ticketID); err != nil {
		return nil, err
	}

	stats := &TicketStats{}
	rows, err := e.ListTasks(TaskQuery{TicketID: ticketID, View: ViewAllTasks, IncludeClosed: true})
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		stats.Total++
		switch row.Status {
		case StatusOpen:
			stats.Open++
			if row.Blocked {
				stats.Blocked++
			}
		case StatusClosed:
			stats.Closed++
		}
	}
	return stats, nil
}
