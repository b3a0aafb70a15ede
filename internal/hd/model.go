// ABOUTME: Core domain types for the ticket task engine (Task, Ticket, Template, TemplateItem, TeamMember).
// ABOUTME: Includes the Status enum, the derived Blocked predicate, and sentinel errors for validation failures.

package hd

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Status is the persisted workflow state of a task. Blocked is derived,
// never stored (see Task.DependsOnTaskID and the view projection).
type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// IsValid checks if the status is a known built-in status
func (s Status) IsValid() bool {
	return s == StatusOpen || s == StatusClosed
}

const maxTitleLength = 500

// Task is a checklist item scoped to one ticket. At most one predecessor
// (DependsOnTaskID); fan-out is unrestricted.
type Task struct {
	ID              string         `gorm:"primarykey;size:36" json:"id"`
	TicketID        string         `gorm:"size:36;not null;index" json:"ticket_id"`
	Title           string         `gorm:"size:500;not null" json:"title"`
	Status          Status         `gorm:"size:16;not null;default:open" json:"status"`
	SortOrder       int            `gorm:"not null" json:"sort_order"`
	Assignee        string         `gorm:"size:64" json:"assignee,omitempty"`
	OwningTeam      string         `gorm:"size:64" json:"owning_team,omitempty"`
	DueAt           *time.Time     `json:"due_at,omitempty"`
	DependsOnTaskID *string        `gorm:"size:36;index" json:"depends_on_task_id,omitempty"`
	CreatedBy       string         `gorm:"size:64" json:"created_by,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	ClosedAt        *time.Time     `json:"closed_at,omitempty"`
	ClosedBy        string         `gorm:"size:64" json:"closed_by,omitempty"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	DeletedBy       string         `gorm:"size:64" json:"deleted_by,omitempty"`
	Version         int            `gorm:"not null;default:0" json:"version"`
}

// TableName returns the table name for Task model.
func (Task) TableName() string { return "tasks" }

// BlockedBy reports whether predecessor leaves this task blocked: an edge is
// blocking while the referenced task is not closed.
func (t *Task) BlockedBy(predecessor *Task) bool {
	if t.DependsOnTaskID == nil || predecessor == nil {
		return false
	}
	return *t.DependsOnTaskID == predecessor.ID && predecessor.Status != StatusClosed
}

// Ticket is the minimal owning record for tasks. Everything else about
// tickets lives outside this engine.
type Ticket struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	Subject   string    `gorm:"size:500;not null" json:"subject"`
	CreatedBy string    `gorm:"size:64" json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the table name for Ticket model.
func (Ticket) TableName() string { return "tickets" }

// Template is a reusable ordered checklist definition.
type Template struct {
	ID        string         `gorm:"primarykey;size:36" json:"id"`
	Name      string         `gorm:"size:200;not null" json:"name"`
	Active    bool           `gorm:"not null;default:true" json:"active"`
	Items     []TemplateItem `gorm:"foreignKey:TemplateID" json:"items,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// TableName returns the table name for Template model.
func (Template) TableName() string { return "templates" }

// TemplateItem is one entry of a template. DependsOnItemID references another
// item within the same template, never a task.
type TemplateItem struct {
	ID              string  `gorm:"primarykey;size:36" json:"id"`
	TemplateID      string  `gorm:"size:36;not null;index" json:"template_id"`
	Position        int     `gorm:"not null" json:"position"`
	Title           string  `gorm:"size:500;not null" json:"title"`
	DependsOnItemID *string `gorm:"size:36" json:"depends_on_item_id,omitempty"`
}

// TableName returns the table name for TemplateItem model.
func (TemplateItem) TableName() string { return "template_items" }

// TeamMember backs the team-membership lookup used by assignee inference.
type TeamMember struct {
	UserID string `gorm:"primarykey;size:64" json:"user_id"`
	TeamID string `gorm:"primarykey;size:64" json:"team_id"`
}

// TableName returns the table name for TeamMember model.
func (TeamMember) TableName() string { return "team_members" }

// TeamDirectory resolves the teams a user belongs to. Used only by the
// assignee-inference branch of UpdateTask.
type TeamDirectory interface {
	TeamsForUser(userID string) ([]string, error)
}

// Sentinel error constants
var (
	ErrNoDataDir        = errors.New("no .hd directory found (run hd init)")
	ErrNotFound         = errors.New("not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleTooLong     = fmt.Errorf("title exceeds %d characters", maxTitleLength)
	ErrSelfDependency   = errors.New("a task cannot depend on itself")
	ErrCrossTicket      = errors.New("dependency must be a task on the same ticket")
	ErrCycle            = errors.New("circular dependency detected")
	ErrTaskBlocked      = errors.New("cannot complete a blocked task; resolve the dependency first")
	ErrAlreadyClosed    = errors.New("task is already completed")
	ErrNotClosed        = errors.New("task is not closed")
	ErrTemplateInactive = errors.New("template is inactive")
	ErrStaleTask        = errors.New("task was modified concurrently, retry")
)

// ValidationError scopes a business-rule rejection to the field that caused
// it, so callers can surface it next to the offending input.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error { return e.Err }

func fieldErr(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}
