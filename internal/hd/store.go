// ABOUTME: Engine construction and the sqlite-backed task store for hd.
// ABOUTME: Resolves the .hd data directory, opens/migrates the database, and serializes mutations in transactions.

package hd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	hdDirName  = ".hd"
	dbFileName = "tasks.db"
)

type GlobalOptions struct {
	JSON bool
	Dir  string
}

// Engine owns all task mutations. Every write runs inside one transaction;
// events collected during the write are dispatched to sinks after commit.
type Engine struct {
	db    *gorm.DB
	teams TeamDirectory
	sinks []func(Event)
	now   func() time.Time
	newID func() string
}

// NewEngine wraps an open database. teams may be nil, in which case the
// membership table in the same database is used.
func NewEngine(db *gorm.DB, teams TeamDirectory) *Engine {
	e := &Engine{
		db:    db,
		teams: teams,
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	if e.teams == nil {
		e.teams = &storeDirectory{db: db}
	}
	return e
}

// Subscribe registers a sink that receives events after each successful
// commit, in emission order.
func (e *Engine) Subscribe(sink func(Event)) {
	e.sinks = append(e.sinks, sink)
}

// DB exposes the underlying handle for read projections.
func (e *Engine) DB() *gorm.DB { return e.db }

// storeDirectory resolves memberships from the team_members table.
type storeDirectory struct {
	db *gorm.DB
}

func (d *storeDirectory) TeamsForUser(userID string) ([]string, error) {
	var teams []string
	err := d.db.Model(&TeamMember{}).
		Where("user_id = ?", userID).
		Order("team_id").
		Pluck("team_id", &teams).Error
	if err != nil {
		return nil, fmt.Errorf("failed to look up teams for %s: %w", userID, err)
	}
	return teams, nil
}

func resolveDataDir(start string) (string, error) {
	current := start
	for {
		candidate := filepath.Join(current, hdDirName)
		info, err := os.Stat(candidate)
		if err == nil {
			if info.IsDir() {
				return candidate, nil
			}
			return "", fmt.Errorf("%s exists but is not a directory", candidate)
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
		if current == filepath.Dir(current) {
			break
		}
		current = filepath.Dir(current)
	}

	if filepath.Base(start) == hdDirName {
		info, err := os.Stat(start)
		if err == nil && info.IsDir() {
			return start, nil
		}
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return "", err
		}
	}

	return "", ErrNoDataDir
}

func dataDir(opts GlobalOptions) (string, error) {
	start := opts.Dir
	if start == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		start = wd
	}
	return resolveDataDir(start)
}

// Init creates a .hd directory under path and an empty database in it.
func Init(path string) error {
	dirPath := filepath.Join(path, hdDirName)
	if _, err := os.Stat(dirPath); err == nil {
		return fmt.Errorf("already initialized at %s", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return err
	}
	db, err := openDB(filepath.Join(dirPath, dbFileName))
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Open opens the database inside an existing .hd directory and migrates it.
func Open(dir string) (*Engine, error) {
	db, err := openDB(filepath.Join(dir, dbFileName))
	if err != nil {
		return nil, err
	}
	return NewEngine(db, nil), nil
}

func openDB(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.AutoMigrate(&Ticket{}, &Task{}, &Template{}, &TemplateItem{}, &TeamMember{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}
	return db, nil
}

// mutate runs fn inside a transaction and dispatches the events it returns
// after the commit succeeds. Events from a rolled-back transaction are never
// seen by sinks.
func (e *Engine) mutate(fn func(tx *gorm.DB) ([]Event, error)) ([]Event, error) {
	var events []Event
	err := e.db.Transaction(func(tx *gorm.DB) error {
		var err error
		events, err = fn(tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, evt := range events {
		for _, sink := range e.sinks {
			sink(evt)
		}
	}
	return events, nil
}

// findTask loads a non-deleted task by id.
func findTask(tx *gorm.DB, taskID string) (*Task, error) {
	var task Task
	if err := tx.First(&task, "id = ?", taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
		}
		return nil, err
	}
	return &task, nil
}

func findTicket(tx *gorm.DB, ticketID string) (*Ticket, error) {
	var ticket Ticket
	if err := tx.First(&ticket, "id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ticket %q: %w", ticketID, ErrNotFound)
		}
		return nil, err
	}
	return &ticket, nil
}

// dependentsOf lists non-deleted tasks whose predecessor is taskID.
func dependentsOf(tx *gorm.DB, taskID string) ([]*Task, error) {
	var dependents []*Task
	if err := tx.Where("depends_on_task_id = ?", taskID).Order("sort_order").Find(&dependents).Error; err != nil {
		return nil, err
	}
	return dependents, nil
}

// maxSortOrder returns the highest sort key on the ticket, 0 when empty.
func maxSortOrder(tx *gorm.DB, ticketID string) (int, error) {
	var max *int
	err := tx.Model(&Task{}).
		Where("ticket_id = ?", ticketID).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

// saveTask persists task with an optimistic version check. The caller holds
// the task as read earlier in the same transaction; a concurrent bump since
// that read surfaces as ErrStaleTask.
func saveTask(tx *gorm.DB, task *Task) error {
	prev := task.Version
	task.Version++
	result := tx.Model(&Task{}).
		Where("id = ? AND version = ?", task.ID, prev).
		Select("*").Omit("id", "created_at", "deleted_at").
		Updates(task)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("task %q: %w", task.ID, ErrStaleTask)
	}
	return nil
}
