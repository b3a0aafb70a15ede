// ABOUTME: Property-based test asserting dependency-chain acyclicity after every accepted mutation.
// ABOUTME: Drives random create/update/complete/delete sequences with rapid and walks every chain.

package hd

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// assertAcyclic follows DependsOnTaskID from every task and fails if a walk
// revisits an id.
func assertAcyclic(t *rapid.T, engine *Engine) {
	items, err := engine.ListTasks(TaskQuery{View: ViewAllTasks, IncludeClosed: true})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}

	byID := make(map[string]TaskListItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	for _, item := range items {
		seen := map[string]bool{}
		current := item
		for {
			if seen[current.ID] {
				t.Fatalf("cycle through task %s", current.ID)
			}
			seen[current.ID] = true
			if current.DependsOnTaskID == nil {
				break
			}
			next, ok := byID[*current.DependsOnTaskID]
			if !ok {
				break
			}
			current = next
		}
	}
}

func TestAcyclicityHoldsUnderRandomMutations(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		engine := newTestEngine(t)
		ticket, err := engine.CreateTicket("Property ticket", "prop")
		require.NoError(t, err)

		var ids []string
		pick := func() string {
			return ids[rapid.IntRange(0, len(ids)-1).Draw(rt, "pick")]
		}

		steps := rapid.IntRange(5, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.IntRange(0, 4).Draw(rt, "op")
			switch {
			case op == 0 || len(ids) < 2:
				task, _, err := engine.CreateTask(ticket.ID, fmt.Sprintf("Task %d", i), "prop", CreateOptions{})
				if err != nil {
					rt.Fatalf("create: %v", err)
				}
				ids = append(ids, task.ID)

			case op == 1:
				target, candidate := pick(), pick()
				_, _, err := engine.UpdateTask(target, TaskPatch{DependsOnTaskID: &candidate}, "prop")
				if err != nil && !isExpectedRejection(err) {
					rt.Fatalf("update dependency: %v", err)
				}

			case op == 2:
				_, _, err := engine.UpdateTask(pick(), TaskPatch{ClearDependsOn: true}, "prop")
				if err != nil && !errors.Is(err, ErrNotFound) {
					rt.Fatalf("clear dependency: %v", err)
				}

			case op == 3:
				_, _, err := engine.CompleteTask(pick(), "prop")
				if err != nil && !isExpectedRejection(err) {
					rt.Fatalf("complete: %v", err)
				}

			case op == 4:
				victim := pick()
				if _, err := engine.DeleteTask(victim, "prop"); err != nil {
					if !errors.Is(err, ErrNotFound) {
						rt.Fatalf("delete: %v", err)
					}
				}
			}

			assertAcyclic(rt, engine)
		}
	})
}

func isExpectedRejection(err error) bool {
	return errors.Is(err, ErrSelfDependency) ||
		errors.Is(err, ErrCycle) ||
		errors.Is(err, ErrCrossTicket) ||
		errors.Is(err, ErrTaskBlocked) ||
		errors.Is(err, ErrAlreadyClosed) ||
		errors.Is(err, ErrNotFound)
}
