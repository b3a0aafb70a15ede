// ABOUTME: Tests for the task lifecycle state machine: complete, reopen, delete, and bulk close.
// ABOUTME: Covers the blocked-completion rule, unblock cascades, and dangling-edge clearing on delete.

package hd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTaskAppendsSortOrder(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)

	a := newTestTask(t, engine, ticket.ID, "First")
	b := newTestTask(t, engine, ticket.ID, "Second")

	assert.Equal(t, 1, a.SortOrder)
	assert.Equal(t, 2, b.SortOrder)
	assert.Equal(t, StatusOpen, a.Status)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)

	_, _, err := engine.CreateTask(ticket.ID, "   ", "tester", CreateOptions{})
	require.ErrorIs(t, err, ErrTitleRequired)
}

func TestCreateTaskOnMissingTicket(t *testing.T) {
	engine := newTestEngine(t)

	_, _, err := engine.CreateTask("nope", "Task", "tester", CreateOptions{})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteBlockedTaskFails(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	_, _, err = engine.CompleteTask(b.ID, "tester")
	require.ErrorIs(t, err, ErrTaskBlocked)

	detail, err := engine.GetTask(b.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, detail.Status)
	assert.True(t, detail.Blocked)
}

func TestCompleteAlreadyClosedFails(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	task := newTestTask(t, engine, ticket.ID, "Once")

	_, _, err := engine.CompleteTask(task.ID, "tester")
	require.NoError(t, err)

	_, _, err = engine.CompleteTask(task.ID, "tester")
	require.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestCompleteEmitsUnblockedForOpenDependents(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	completed, events, err := engine.CompleteTask(a.ID, "tester")
	require.NoError(t, err)
	require.Equal(t, StatusClosed, completed.Status)
	require.NotNil(t, completed.ClosedAt)
	assert.Equal(t, "tester", completed.ClosedBy)

	require.Len(t, events, 2)
	assert.Equal(t, EventTaskCompleted, events[0].Type)
	assert.Equal(t, a.ID, events[0].TaskID)
	assert.Equal(t, EventTaskUnblocked, events[1].Type)
	assert.Equal(t, b.ID, events[1].TaskID)

	// B is no longer blocked and can now complete.
	_, _, err = engine.CompleteTask(b.ID, "tester")
	require.NoError(t, err)
}

func TestCompleteSkipsUnblockedForClosedDependents(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	// Close the dependent first via the bulk override, then reopen only A.
	_, _, err = engine.BulkCloseTasks(ticket.ID, "tester")
	require.NoError(t, err)
	_, _, err = engine.ReopenTask(a.ID, "tester")
	require.NoError(t, err)

	_, events, err := engine.CompleteTask(a.ID, "tester")
	require.NoError(t, err)
	for _, evt := range events {
		assert.NotEqual(t, EventTaskUnblocked, evt.Type, "closed dependent %s must not unblock", b.ID)
	}
}

func TestReopenClearsCloseAudit(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	task := newTestTask(t, engine, ticket.ID, "Cycle me")

	_, _, err := engine.CompleteTask(task.ID, "tester")
	require.NoError(t, err)

	reopened, events, err := engine.ReopenTask(task.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, StatusOpen, reopened.Status)
	assert.Nil(t, reopened.ClosedAt)
	assert.Empty(t, reopened.ClosedBy)
	require.Len(t, events, 1)
	assert.Equal(t, EventTaskReopened, events[0].Type)
}

func TestReopenOpenTaskFails(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	task := newTestTask(t, engine, ticket.ID, "Still open")

	_, _, err := engine.ReopenTask(task.ID, "tester")
	require.ErrorIs(t, err, ErrNotClosed)
}

func TestReopenReblocksOpenDependentOnRead(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	_, _, err = engine.CompleteTask(a.ID, "tester")
	require.NoError(t, err)

	detail, err := engine.GetTask(b.ID)
	require.NoError(t, err)
	require.False(t, detail.Blocked)

	// Reopening A re-derives B as blocked with no stored change on B.
	_, _, err = engine.ReopenTask(a.ID, "tester")
	require.NoError(t, err)

	detail, err = engine.GetTask(b.ID)
	require.NoError(t, err)
	assert.True(t, detail.Blocked)
	assert.Equal(t, StatusOpen, detail.Status)
}

func TestBulkCloseOverridesBlockedCheck(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	_, _, err := engine.CreateTask(ticket.ID, "Blocked dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	count, events, err := engine.BulkCloseTasks(ticket.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, evt := range events {
		assert.Equal(t, EventTaskCompleted, evt.Type)
	}

	items, err := engine.ListTasks(TaskQuery{TicketID: ticket.ID, View: ViewAllTasks, IncludeClosed: true})
	require.NoError(t, err)
	for _, item := range items {
		assert.Equal(t, StatusClosed, item.Status)
	}
}

func TestBulkCloseCountsOnlyOpenTasks(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Done already")
	newTestTask(t, engine, ticket.ID, "Still open")

	_, _, err := engine.CompleteTask(a.ID, "tester")
	require.NoError(t, err)

	count, _, err := engine.BulkCloseTasks(ticket.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteClearsDependentEdges(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	events, err := engine.DeleteTask(a.ID, "tester")
	require.NoError(t, err)

	detail, err := engine.GetTask(b.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.DependsOnTaskID)
	assert.False(t, detail.Blocked)

	var types []string
	for _, evt := range events {
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{EventTaskUnblocked, EventTaskDeleted}, types)

	_, err = engine.GetTask(a.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteEmitsDenormalizedSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	task, _, err := engine.CreateTask(ticket.ID, "Going away", "tester", CreateOptions{Assignee: "alice"})
	require.NoError(t, err)

	events, err := engine.DeleteTask(task.ID, "tester")
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, EventTaskDeleted, events[0].Type)

	data, ok := events[0].Data.(TaskDeletedData)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, data.TicketID)
	assert.Equal(t, "Going away", data.Title)
	assert.Equal(t, "alice", data.Assignee)
	assert.Nil(t, events[0].Task, "row is filtered from reads, only the snapshot travels")
}

func TestDeleteSkipsUnblockedForClosedDependents(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "Predecessor")
	b, _, err := engine.CreateTask(ticket.ID, "Dependent", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	_, _, err = engine.BulkCloseTasks(ticket.ID, "tester")
	require.NoError(t, err)
	_, _, err = engine.ReopenTask(a.ID, "tester")
	require.NoError(t, err)

	events, err := engine.DeleteTask(a.ID, "tester")
	require.NoError(t, err)
	for _, evt := range events {
		assert.NotEqual(t, EventTaskUnblocked, evt.Type)
	}

	detail, err := engine.GetTask(b.ID)
	require.NoError(t, err)
	assert.Nil(t, detail.DependsOnTaskID, "edge cleared even for closed dependents")
}
