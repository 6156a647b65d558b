package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/material"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// MaterialRepository implements material.Repository
type MaterialRepository struct {
	db *sql.DB
}

// NewMaterialRepository creates a new material repository
func NewMaterialRepository(db *sql.DB) material.Repository {
	return &MaterialRepository{db: db}
}

// Create creates a new material
func (r *MaterialRepository) Create(ctx context.Context, m *material.Material) error {
	now := time.Now()
	m.CreatedAt = now
	m.UpdatedAt = now

	query := `
		INSERT INTO materials (title, description, file_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		m.Title, m.Description, m.FileURL, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create material", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get material ID", err)
	}

	m.ID = id
	return nil
}

// GetByID retrieves a material by ID
func (r *MaterialRepository) GetByID(ctx context.Context, id int64) (*material.Material, error) {
	query := `
		SELECT id, title, description, file_url, created_at, updated_at
		FROM materials WHERE id = ?
	`

	var m material.Material
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.Title, &m.Description, &m.FileURL, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Material")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get material", err)
	}

	m.CreatedAt = time.Unix(createdAt, 0)
	m.UpdatedAt = time.Unix(updatedAt, 0)
	return &m, nil
}

// List retrieves all materials, newest first
func (r *MaterialRepository) List(ctx context.Context) ([]*material.Material, error) {
	query := `
		SELECT id, title, description, file_url, created_at, updated_at
		FROM materials
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list materials", err)
	}
	defer rows.Close()

	var materials []*material.Material
	for rows.Next() {
		var m material.Material
		var createdAt, updatedAt int64

		err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.FileURL, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan material", err)
		}

		m.CreatedAt = time.Unix(createdAt, 0)
		m.UpdatedAt = time.Unix(updatedAt, 0)
		materials = append(materials, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate materials", err)
	}

	return materials, nil
}

// Update updates a material
func (r *MaterialRepository) Update(ctx context.Context, m *material.Material) error {
	m.UpdatedAt = time.Now()

	query := `
		UPDATE materials
		SET title = ?, description = ?, file_url = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		m.Title, m.Description, m.FileURL, m.UpdatedAt.Unix(), m.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update material", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Material")
	}
	return nil
}

// Delete deletes a material
func (r *MaterialRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE id = ?`, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete material", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Material")
	}
	return nil
}
