package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Preset is a named stage arrangement: for each model, the transform it
// had when the preset was saved. Models are matched back by name when a
// preset is applied.
type Preset struct {
	ID        string
	Name      string
	Models    []PresetModel
	CreatedAt time.Time
}

// PresetModel is one model's saved transform within a preset. Slot is the
// model's position in the layout order.
type PresetModel struct {
	ModelName string
	Slot      int
	Position  mgl64.Vec3
	Rotation  mgl64.Quat
	Scale     float64
}

// PresetRepository provides CRUD operations for stage presets.
type PresetRepository struct {
	db *sql.DB
}

// Presets returns the preset repository for this store.
func (s *Store) Presets() *PresetRepository {
	return &PresetRepository{db: s.db}
}

// Create inserts a preset and its model transforms in one transaction.
func (r *PresetRepository) Create(p *Preset) error {
	p.CreatedAt = time.Now()

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO presets (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(
		`INSERT INTO preset_models (preset_id, model_name, slot, pos_x, pos_y, pos_z, rot_w, rot_x, rot_y, rot_z, scale)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range p.Models {
		_, err := stmt.Exec(
			p.ID, m.ModelName, m.Slot,
			m.Position.X(), m.Position.Y(), m.Position.Z(),
			m.Rotation.W, m.Rotation.V.X(), m.Rotation.V.Y(), m.Rotation.V.Z(),
			m.Scale,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID retrieves a preset with its model transforms.
func (r *PresetRepository) GetByID(id string) (*Preset, error) {
	return r.getWhere(`id = ?`, id)
}

// GetByName retrieves a preset with its model transforms.
func (r *PresetRepository) GetByName(name string) (*Preset, error) {
	return r.getWhere(`name = ?`, name)
}

func (r *PresetRepository) getWhere(where string, arg any) (*Preset, error) {
	p := &Preset{}
	err := r.db.QueryRow(
		`SELECT id, name, created_at FROM presets WHERE `+where, arg,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := r.db.Query(
		`SELECT model_name, slot, pos_x, pos_y, pos_z, rot_w, rot_x, rot_y, rot_z, scale
		 FROM preset_models WHERE preset_id = ? ORDER BY slot`,
		p.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var m PresetModel
		var px, py, pz, rw, rx, ry, rz float64
		err := rows.Scan(&m.ModelName, &m.Slot, &px, &py, &pz, &rw, &rx, &ry, &rz, &m.Scale)
		if err != nil {
			return nil, err
		}
		m.Position = mgl64.Vec3{px, py, pz}
		m.Rotation = mgl64.Quat{W: rw, V: mgl64.Vec3{rx, ry, rz}}
		p.Models = append(p.Models, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return p, nil
}

// List retrieves all presets without their model transforms, newest
// first. Use GetByID for the full arrangement.
func (r *PresetRepository) List() ([]*Preset, error) {
	rows, err := r.db.Query(`SELECT id, name, created_at FROM presets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var presets []*Preset
	for rows.Next() {
		p := &Preset{}
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		presets = append(presets, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return presets, nil
}

// Delete removes a preset and, through the foreign key, its model
// transforms.
func (r *PresetRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM presets WHERE id = ?`, id)
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
