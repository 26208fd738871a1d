package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// Action binds a gesture to a plugin action. Gesture names either a
// built-in shape (pinch, grab, thumbs_up and so on) or a custom trained
// gesture; several actions may share one gesture.
type Action struct {
	ID         string
	Gesture    string
	PluginName string
	ActionName string
	Config     json.RawMessage
	Enabled    bool
	CreatedAt  time.Time
}

// ActionRepository provides CRUD operations for action bindings.
type ActionRepository struct {
	db *sql.DB
}

// Actions returns the action repository for this store.
func (s *Store) Actions() *ActionRepository {
	return &ActionRepository{db: s.db}
}

// Create inserts a new action binding.
func (r *ActionRepository) Create(a *Action) error {
	a.CreatedAt = time.Now()

	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	_, err := r.db.Exec(
		`INSERT INTO actions (id, gesture, plugin_name, action_name, config, enabled, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Gesture, a.PluginName, a.ActionName, string(config), a.Enabled, a.CreatedAt,
	)
	return err
}

// GetByID retrieves an action by its ID.
func (r *ActionRepository) GetByID(id string) (*Action, error) {
	row := r.db.QueryRow(
		`SELECT id, gesture, plugin_name, action_name, config, enabled, created_at
		 FROM actions WHERE id = ?`,
		id,
	)
	a, err := scanAction(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

// ListByGesture retrieves the enabled actions bound to a gesture, oldest
// first so they fire in the order they were configured.
func (r *ActionRepository) ListByGesture(gestureName string) ([]*Action, error) {
	return r.list(`WHERE gesture = ? AND enabled = 1 ORDER BY created_at`, gestureName)
}

// List retrieves all action bindings, newest first.
func (r *ActionRepository) List() ([]*Action, error) {
	return r.list(`ORDER BY created_at DESC`)
}

func (r *ActionRepository) list(clause string, args ...any) ([]*Action, error) {
	rows, err := r.db.Query(
		`SELECT id, gesture, plugin_name, action_name, config, enabled, created_at
		 FROM actions `+clause,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []*Action
	for rows.Next() {
		a, err := scanAction(rows.Scan)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return actions, nil
}

func scanAction(scan func(...any) error) (*Action, error) {
	a := &Action{}
	var config string
	var enabled int

	err := scan(&a.ID, &a.Gesture, &a.PluginName, &a.ActionName, &config, &enabled, &a.CreatedAt)
	if err != nil {
		return nil, err
	}

	a.Config = json.RawMessage(config)
	a.Enabled = enabled != 0
	return a, nil
}

// Update updates an existing action binding.
func (r *ActionRepository) Update(a *Action) error {
	config := a.Config
	if config == nil {
		config = json.RawMessage("{}")
	}

	enabled := 0
	if a.Enabled {
		enabled = 1
	}

	result, err := r.db.Exec(
		`UPDATE actions SET gesture = ?, plugin_name = ?, action_name = ?, config = ?, enabled = ?
		 WHERE id = ?`,
		a.Gesture, a.PluginName, a.ActionName, string(config), enabled, a.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes an action binding by its ID.
func (r *ActionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM actions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
