// ABOUTME: Tests for data-directory resolution, init, and the optimistic version check.
// ABOUTME: Verifies stale writes are rejected and .hd discovery walks up parent directories.

package hd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesDatabase(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root))

	_, err := os.Stat(filepath.Join(root, hdDirName, dbFileName))
	require.NoError(t, err)

	// Second init in the same place fails.
	require.Error(t, Init(root))
}

func TestResolveDataDirWalksUp(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Init(root))
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))

	dir, err := resolveDataDir(nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, hdDirName), dir)
}

func TestResolveDataDirMissing(t *testing.T) {
	_, err := resolveDataDir(t.TempDir())
	require.ErrorIs(t, err, ErrNoDataDir)
}

func TestStaleWriteRejected(t *testing.T) {
	engine := newTestEngine(t)
	ticket := newTestTicket(t, engine)
	task := newTestTask(t, engine, ticket.ID, "Contended")

	stale := *task

	// A concurrent update bumps the version.
	_, _, err := engine.UpdateTask(task.ID, TaskPatch{Title: strPtr("Fresh title")}, "tester")
	require.NoError(t, err)

	stale.Title = "Stale title"
	err = saveTask(engine.db, &stale)
	require.ErrorIs(t, err, ErrStaleTask)

	detail, err := engine.GetTask(task.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh title", detail.Title)
}

func TestTeamsForUserOrdering(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.DB().Create(&TeamMember{UserID: "dana", TeamID: "zeta"}).Error)
	require.NoError(t, engine.DB().Create(&TeamMember{UserID: "dana", TeamID: "alpha"}).Error)

	teams, err := engine.teams.TeamsForUser("dana")
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "zeta"}, teams)
}
