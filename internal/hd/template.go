// ABOUTME: Template save/load and expansion into concrete tasks on a ticket.
// ABOUTME: Item graphs are validated for acyclicity at save time; expansion remaps item ids to new task ids.

package hd

import (
	"errors"
	"fmt"
	"os"

	"gorm.io/gorm"
	"gopkg.in/yaml.v3"
)

// TemplateFile is the YAML document accepted by `hd template import`. Items
// reference each other by their key within the same file.
type TemplateFile struct {
	Name  string `yaml:"name"`
	Items []struct {
		Key       string `yaml:"key"`
		Title     string `yaml:"title"`
		DependsOn string `yaml:"depends_on,omitempty"`
	} `yaml:"items"`
}

// LoadTemplateFile parses a YAML template definition from disk.
func LoadTemplateFile(path string) (*TemplateFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var file TemplateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template file: %w", err)
	}
	return &file, nil
}

// SaveTemplate persists a template parsed from a file. The item graph is
// checked for unknown references and cycles here, at authoring time, so
// expansion never produces a cyclic task graph from a malformed template.
func (e *Engine) SaveTemplate(file *TemplateFile) (*Template, error) {
	if file.Name == "" {
		return nil, fieldErr("name", ErrTitleRequired)
	}
	if len(file.Items) == 0 {
		return nil, fieldErr("items", errors.New("template has no items"))
	}

	keyToID := make(map[string]string, len(file.Items))
	tpl := &Template{
		ID:     e.newID(),
		Name:   file.Name,
		Active: true,
	}
	for i, item := range file.Items {
		if err := validateTitle(item.Title); err != nil {
			return nil, err
		}
		if item.Key == "" {
			return nil, fieldErr("items", fmt.Errorf("item %d has no key", i))
		}
		if _, dup := keyToID[item.Key]; dup {
			return nil, fieldErr("items", fmt.Errorf("duplicate item key %q", item.Key))
		}
		keyToID[item.Key] = e.newID()
	}

	for i, item := range file.Items {
		entry := TemplateItem{
			ID:         keyToID[item.Key],
			TemplateID: tpl.ID,
			Position:   i + 1,
			Title:      item.Title,
		}
		if item.DependsOn != "" {
			depID, ok := keyToID[item.DependsOn]
			if !ok {
				return nil, fieldErr("items", fmt.Errorf("item %q depends on unknown item %q", item.Key, item.DependsOn))
			}
			if depID == entry.ID {
				return nil, fieldErr("items", ErrSelfDependency)
			}
			entry.DependsOnItemID = &depID
		}
		tpl.Items = append(tpl.Items, entry)
	}

	if err := checkItemGraph(tpl.Items); err != nil {
		return nil, fieldErr("items", err)
	}

	err := e.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(tpl).Error; err != nil {
			return fmt.Errorf("failed to save template: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tpl, nil
}

// checkItemGraph walks each item's depends-on chain; with single fan-in the
// graph is a forest of chains, so a walk longer than the item count means a
// cycle.
func checkItemGraph(items []TemplateItem) error {
	byID := make(map[string]*TemplateItem, len(items))
	for i := range items {
		byID[items[i].ID] = &items[i]
	}
	for i := range items {
		seen := map[string]bool{}
		current := &items[i]
		for {
			if seen[current.ID] {
				return ErrCycle
			}
			seen[current.ID] = true
			if current.DependsOnItemID == nil {
				break
			}
			next, ok := byID[*current.DependsOnItemID]
			if !ok {
				break
			}
			current = next
		}
	}
	return nil
}

// GetTemplate loads a template with its items in defined order.
func (e *Engine) GetTemplate(templateID string) (*Template, error) {
	return findTemplate(e.db, templateID)
}

func findTemplate(tx *gorm.DB, templateID string) (*Template, error) {
	var tpl Template
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	}).First(&tpl, "id = ?", templateID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("template %q: %w", templateID, ErrNotFound)
		}
		return nil, err
	}
	return &tpl, nil
}

// ListTemplates returns all templates, newest first.
func (e *Engine) ListTemplates() ([]*Template, error) {
	var templates []*Template
	if err := e.db.Order("created_at DESC").Find(&templates).Error; err != nil {
		return nil, err
	}
	return templates, nil
}

// ApplyTemplate instantiates a template's items as tasks on the ticket. The
// item→task id mapping is fully built before any dependency edge is read from
// it, and the sort counter runs across the whole batch without resetting.
func (e *Engine) ApplyTemplate(ticketID, templateID, actor string) ([]*Task, []Event, error) {
	var created []*Task
	events, err := e.mutate(func(tx *gorm.DB) ([]Event, error) {
		if _, err := findTicket(tx, ticketID); err != nil {
			return nil, err
		}
		tpl, err := findTemplate(tx, templateID)
		if err != nil {
			return nil, err
		}
		if !tpl.Active {
			return nil, fieldErr("template_id", ErrTemplateInactive)
		}

		next, err := maxSortOrder(tx, ticketID)
		if err != nil {
			return nil, err
		}

		itemToTask := make(map[string]string, len(tpl.Items))
		for _, item := range tpl.Items {
			next++
			task := &Task{
				ID:        e.newID(),
				TicketID:  ticketID,
				Title:     item.Title,
				Status:    StatusOpen,
				SortOrder: next,
				CreatedBy: actor,
			}
			itemToTask[item.ID] = task.ID
			created = append(created, task)
		}

		var events []Event
		for i, item := range tpl.Items {
			task := created[i]
			if item.DependsOnItemID != nil {
				if mapped, ok := itemToTask[*item.DependsOnItemID]; ok {
					dep := mapped
					task.DependsOnTaskID = &dep
				}
			}
			if err := tx.Create(task).Error; err != nil {
				return nil, fmt.Errorf("failed to create task from template item: %w", err)
			}
			events = append(events, e.newEvent(EventTaskCreated, task, actor, nil))
		}
		return events, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return created, events, nil
}
