// ABOUTME: Shared test harness plus event-dispatch behavior tests.
// ABOUTME: Verifies sinks see events only after a successful commit, in emission order.

package hd

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := openDB(filepath.Join(t.TempDir(), "tasks.db"))
	require.NoError(t, err)
	return NewEngine(db, nil)
}

func newTestTicket(t *testing.T, e *Engine) *Ticket {
	t.Helper()
	ticket, err := e.CreateTicket("Printer on fire", "tester")
	require.NoError(t, err)
	return ticket
}

func newTestTask(t *testing.T, e *Engine, ticketID, title string) *Task {
	t.Helper()
	task, _, err := e.CreateTask(ticketID, title, "tester", CreateOptions{})
	require.NoError(t, err)
	return task
}

func TestSinkReceivesEventsAfterCommit(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)

	var seen []string
	engine.Subscribe(func(evt Event) {
		seen = append(seen, evt.Type)
	})

	task := newTestTask(t, engine, ticket.ID, "Replace toner")
	require.Equal(t, []string{EventTaskCreated}, seen)

	_, _, err := engine.CompleteTask(task.ID, "tester")
	require.NoError(t, err)
	assert.Equal(t, []string{EventTaskCreated, EventTaskCompleted}, seen)
}

func TestSinkSeesNothingFromRejectedMutation(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	a := newTestTask(t, engine, ticket.ID, "First")
	b, _, err := engine.CreateTask(ticket.ID, "Second", "tester", CreateOptions{DependsOnTaskID: a.ID})
	require.NoError(t, err)

	var seen []Event
	engine.Subscribe(func(evt Event) {
		seen = append(seen, evt)
	})

	_, _, err = engine.CompleteTask(b.ID, "tester")
	require.ErrorIs(t, err, ErrTaskBlocked)
	assert.Empty(t, seen)
}

func TestEventCarriesTaskSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)

	var created *Event
	engine.Subscribe(func(evt Event) {
		if evt.Type == EventTaskCreated {
			copied := evt
			created = &copied
		}
	})

	task := newTestTask(t, engine, ticket.ID, "Collect logs")
	require.NotNil(t, created)
	require.NotNil(t, created.Task)
	assert.Equal(t, task.ID, created.Task.ID)
	assert.Equal(t, ticket.ID, created.TicketID)
	assert.Equal(t, "tester", created.Actor)
}
