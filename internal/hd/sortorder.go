// ABOUTME: Sort-order maintenance for the per-ticket display ordering key.
// ABOUTME: New tasks append after the current maximum; explicit reorder reassigns a dense 1..N sequence.

package hd

import (
	"fmt"

	"gorm.io/gorm"
)

// ReorderTasks assigns SortOrder i+1 to the i-th listed task. Tasks on the
// ticket but absent from orderedIDs keep their old keys; callers wanting a
// deterministic total order supply the full current set.
func (e *Engine) ReorderTasks(ticketID string, orderedIDs []string) error {
	_, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		if _, err := findTicket(tx, ticketID); err != nil {
			return nil, err
		}
		seen := make(map[string]bool, len(orderedIDs))
		for _, id := range orderedIDs {
			if seen[id] {
				return nil, fieldErr("task_ids", fmt.Errorf("duplicate task id %q", id))
			}
			seen[id] = true
		}

		for i, id := range orderedIDs {
			task, err := findTask(tx, id)
			if err != nil {
				return nil, err
			}
			if task.TicketID != ticketID {
				return nil, fieldErr("task_ids", fmt.Errorf("task %q is not on ticket %q", id, ticketID))
			}
			if task.SortOrder == i+1 {
				continue
			}
			task.SortOrder = i + 1
			if err := saveTask(tx, task); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	return err
}
