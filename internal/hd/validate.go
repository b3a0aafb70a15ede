// ABOUTME: Dependency validator for task predecessor edges.
// ABOUTME: Rejects self-references, cross-ticket edges, and cycles via a seeded ancestor-chain walk.

package hd

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// validateDependency decides whether task may take candidateID as its
// predecessor. Checked before any field is written, so a rejection never
// leaves a partial update.
func validateDependency(tx *gorm.DB, task *Task, candidateID string) error {
	if candidateID == task.ID {
		return ErrSelfDependency
	}

	candidate, err := findTask(tx, candidateID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrCrossTicket
		}
		return err
	}
	if candidate.TicketID != task.TicketID {
		return ErrCrossTicket
	}

	return checkAncestorChain(tx, task.ID, candidate)
}

// checkAncestorChain walks predecessor links starting at candidate, with the
// mutating task's own id pre-marked visited. Fan-in is at most one per task,
// so the walk is O(chain depth); revisiting a marked id means the edge would
// close a cycle.
func checkAncestorChain(tx *gorm.DB, taskID string, candidate *Task) error {
	visited := map[string]bool{taskID: true}
	current := candidate
	for {
		if visited[current.ID] {
			return ErrCycle
		}
		visited[current.ID] = true

		if current.DependsOnTaskID == nil {
			return nil
		}
		next, err := findTask(tx, *current.DependsOnTaskID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				// Dangling edge; invariant 2 says this cannot happen, but a
				// missing ancestor terminates the chain either way.
				return nil
			}
			return fmt.Errorf("walking dependency chain: %w", err)
		}
		current = next
	}
}
