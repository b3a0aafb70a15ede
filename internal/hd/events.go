// ABOUTME: Event type definitions and typed payloads emitted by task mutations.
// ABOUTME: Events are plain return values collected in-transaction and handed to sinks after commit.

package hd

import "time"

// Event type constants
const (
	EventTaskCreated           = "task_created"
	EventTaskCompleted         = "task_completed"
	EventTaskReopened          = "task_reopened"
	EventTaskDeleted           = "task_deleted"
	EventTaskAssigned          = "task_assigned"
	EventTaskDueDateChanged    = "task_due_date_changed"
	EventTaskDependencyChanged = "task_dependency_changed"
	EventTaskUnblocked         = "task_unblocked"
)

// Event is one lifecycle notification. Task is a snapshot taken after the
// mutation; Data carries the typed previous-value payload where one exists.
// Consumers must treat delivery as at-least-once and dedupe by (Type, TaskID,
// OccurredAt).
type Event struct {
	Type       string      `json:"type"`
	TaskID     string      `json:"task_id"`
	TicketID   string      `json:"ticket_id"`
	Actor      string      `json:"actor"`
	OccurredAt time.Time   `json:"occurred_at"`
	Task       *Task       `json:"task,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// TaskDeletedData is the denormalized snapshot carried by task_deleted, since
// the row is filtered from normal reads afterwards.
type TaskDeletedData struct {
	TicketID string `json:"ticket_id"`
	Title    string `json:"title"`
	Assignee string `json:"assignee,omitempty"`
}

// TaskAssignedData carries the ownership values before the change.
type TaskAssignedData struct {
	PrevAssignee   string `json:"prev_assignee,omitempty"`
	PrevOwningTeam string `json:"prev_owning_team,omitempty"`
}

// TaskDueDateChangedData carries the due date before the change.
type TaskDueDateChangedData struct {
	PrevDueAt *time.Time `json:"prev_due_at,omitempty"`
}

// TaskDependencyChangedData carries the predecessor before the change.
type TaskDependencyChangedData struct {
	PrevDependsOnTaskID *string `json:"prev_depends_on_task_id,omitempty"`
}

// newEvent builds an event around a post-mutation snapshot of task.
func (e *Engine) newEvent(eventType string, task *Task, actor string, data interface{}) Event {
	snapshot := *task
	return Event{
		Type:       eventType,
		TaskID:     task.ID,
		TicketID:   task.TicketID,
		Actor:      actor,
		OccurredAt: e.now(),
		Task:       &snapshot,
		Data:       data,
	}
}
