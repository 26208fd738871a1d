package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// GestureType distinguishes pose templates from motion templates.
type GestureType string

const (
	// GestureTypeStatic is a single hand pose.
	GestureTypeStatic GestureType = "static"
	// GestureTypeDynamic is a motion path over time.
	GestureTypeDynamic GestureType = "dynamic"
)

// Gesture is a custom gesture template definition. The template data
// itself, joints for static gestures and a path for dynamic ones, lives in
// separate tables and is saved with SaveTemplate.
type Gesture struct {
	ID        string
	Name      string
	Type      GestureType
	Tolerance float64
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PathPoint is one stored sample of a dynamic gesture's motion path.
type PathPoint struct {
	X           float64
	Y           float64
	Z           float64
	TimestampMS int64
}

// GestureRepository provides CRUD operations for gesture templates.
type GestureRepository struct {
	db *sql.DB
}

// Gestures returns the gesture repository for this store.
func (s *Store) Gestures() *GestureRepository {
	return &GestureRepository{db: s.db}
}

// Create inserts a new gesture definition.
func (r *GestureRepository) Create(g *Gesture) error {
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now

	_, err := r.db.Exec(
		`INSERT INTO gestures (id, name, type, tolerance, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.Name, string(g.Type), g.Tolerance, g.Samples, g.CreatedAt, g.UpdatedAt,
	)
	return err
}

// GetByID retrieves a gesture by its ID.
func (r *GestureRepository) GetByID(id string) (*Gesture, error) {
	return r.getWhere(`id = ?`, id)
}

// GetByName retrieves a gesture by its name.
func (r *GestureRepository) GetByName(name string) (*Gesture, error) {
	return r.getWhere(`name = ?`, name)
}

func (r *GestureRepository) getWhere(where string, arg any) (*Gesture, error) {
	g := &Gesture{}
	var gestureType string

	err := r.db.QueryRow(
		`SELECT id, name, type, tolerance, samples, created_at, updated_at
		 FROM gestures WHERE `+where,
		arg,
	).Scan(&g.ID, &g.Name, &gestureType, &g.Tolerance, &g.Samples, &g.CreatedAt, &g.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	g.Type = GestureType(gestureType)
	return g, nil
}

// List retrieves all gesture definitions, newest first.
func (r *GestureRepository) List() ([]*Gesture, error) {
	rows, err := r.db.Query(
		`SELECT id, name, type, tolerance, samples, created_at, updated_at
		 FROM gestures ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gestures []*Gesture
	for rows.Next() {
		g := &Gesture{}
		var gestureType string

		err := rows.Scan(&g.ID, &g.Name, &gestureType, &g.Tolerance, &g.Samples, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return nil, err
		}

		g.Type = GestureType(gestureType)
		gestures = append(gestures, g)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return gestures, nil
}

// Update updates an existing gesture definition.
func (r *GestureRepository) Update(g *Gesture) error {
	g.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE gestures SET name = ?, type = ?, tolerance = ?, samples = ?, updated_at = ?
		 WHERE id = ?`,
		g.Name, string(g.Type), g.Tolerance, g.Samples, g.UpdatedAt, g.ID,
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

// Delete removes a gesture and, through the foreign keys, its joints,
// path and samples.
func (r *GestureRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM gestures WHERE id = ?`, id)
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

// SaveTemplate replaces the stored template data for a gesture. Static
// gestures carry joints, dynamic ones a path; passing nil for the unused
// one is expected.
func (r *GestureRepository) SaveTemplate(gestureID string, joints []mgl64.Vec3, path []PathPoint) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM gesture_joints WHERE gesture_id = ?`, gestureID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM gesture_paths WHERE gesture_id = ?`, gestureID); err != nil {
		return err
	}

	for i, j := range joints {
		_, err := tx.Exec(
			`INSERT INTO gesture_joints (gesture_id, joint_index, x, y, z) VALUES (?, ?, ?, ?, ?)`,
			gestureID, i, j.X(), j.Y(), j.Z(),
		)
		if err != nil {
			return err
		}
	}

	for i, p := range path {
		_, err := tx.Exec(
			`INSERT INTO gesture_paths (gesture_id, sequence, x, y, z, timestamp_ms) VALUES (?, ?, ?, ?, ?, ?)`,
			gestureID, i, p.X, p.Y, p.Z, p.TimestampMS,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Joints retrieves the stored joint positions for a static gesture, in
// joint order.
func (r *GestureRepository) Joints(gestureID string) ([]mgl64.Vec3, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z FROM gesture_joints WHERE gesture_id = ? ORDER BY joint_index`,
		gestureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var joints []mgl64.Vec3
	for rows.Next() {
		var x, y, z float64
		if err := rows.Scan(&x, &y, &z); err != nil {
			return nil, err
		}
		joints = append(joints, mgl64.Vec3{x, y, z})
	}
	return joints, rows.Err()
}

// Path retrieves the stored motion path for a dynamic gesture, in
// sequence order.
func (r *GestureRepository) Path(gestureID string) ([]PathPoint, error) {
	rows, err := r.db.Query(
		`SELECT x, y, z, timestamp_ms FROM gesture_paths WHERE gesture_id = ? ORDER BY sequence`,
		gestureID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var path []PathPoint
	for rows.Next() {
		var p PathPoint
		if err := rows.Scan(&p.X, &p.Y, &p.Z, &p.TimestampMS); err != nil {
			return nil, err
		}
		path = append(path, p)
	}
	return path, rows.Err()
}
