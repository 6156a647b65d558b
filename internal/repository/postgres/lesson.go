package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/lesson"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// LessonRepository implements lesson.Repository
type LessonRepository struct {
	db *sql.DB
}

// NewLessonRepository creates a new lesson repository
func NewLessonRepository(db *sql.DB) lesson.Repository {
	return &LessonRepository{db: db}
}

// Create creates a new lesson
func (r *LessonRepository) Create(ctx context.Context, l *lesson.Lesson) error {
	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	query := `
		INSERT INTO lessons (title, description, video_url, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		l.Title, l.Description, l.VideoURL, l.Position, now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create lesson", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get lesson ID", err)
	}

	l.ID = id
	return nil
}

// GetByID retrieves a lesson by ID
func (r *LessonRepository) GetByID(ctx context.Context, id int64) (*lesson.Lesson, error) {
	query := `
		SELECT id, title, description, video_url, position, created_at, updated_at
		FROM lessons WHERE id = ?
	`

	var l lesson.Lesson
	var createdAt, updatedAt int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&l.ID, &l.Title, &l.Description, &l.VideoURL, &l.Position, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Lesson")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get lesson", err)
	}

	l.CreatedAt = time.Unix(createdAt, 0)
	l.UpdatedAt = time.Unix(updatedAt, 0)
	return &l, nil
}

// List retrieves all lessons in display order
func (r *LessonRepository) List(ctx context.Context) ([]*lesson.Lesson, error) {
	query := `
		SELECT id, title, description, video_url, position, created_at, updated_at
		FROM lessons
		ORDER BY position ASC, id ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list lessons", err)
	}
	defer rows.Close()

	var lessons []*lesson.Lesson
	for rows.Next() {
		var l lesson.Lesson
		var createdAt, updatedAt int64

		err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.VideoURL, &l.Position, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan lesson", err)
		}

		l.CreatedAt = time.Unix(createdAt, 0)
		l.UpdatedAt = time.Unix(updatedAt, 0)
		lessons = append(lessons, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate lessons", err)
	}

	return lessons, nil
}

// Update updates a lesson
func (r *LessonRepository) Update(ctx context.Context, l *lesson.Lesson) error {
	l.UpdatedAt = time.Now()

	query := `
		UPDATE lessons
		SET title = ?, description = ?, video_url = ?, position = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		l.Title, l.Description, l.VideoURL, l.Position, l.UpdatedAt.Unix(), l.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update lesson", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Lesson")
	}
	return nil
}

// Delete deletes a lesson
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = ?`, id)
	if err != nil {
		return errors.DatabaseError("Failed to delete lesson", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Lesson")
	}
	return nil
}

// UpsertProgress records a student's progress in a lesson
func (r *LessonRepository) UpsertProgress(ctx context.Context, p *lesson.Progress) error {
	p.UpdatedAt = time.Now()

	// ON CONFLICT syntax is shared by sqlite and postgres
	query := `
		INSERT INTO lesson_progress (user_id, lesson_id, seconds, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id, lesson_id)
		DO UPDATE SET seconds = excluded.seconds, completed = excluded.completed, updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		p.UserID, p.LessonID, p.Seconds, p.Completed, p.UpdatedAt.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to save lesson progress", err)
	}
	return nil
}

// ListProgress lists a student's progress across lessons
func (r *LessonRepository) ListProgress(ctx context.Context, userID int64) ([]*lesson.Progress, error) {
	query := `
		SELECT user_id, lesson_id, seconds, completed, updated_at
		FROM lesson_progress
		WHERE user_id = ?
		ORDER BY lesson_id
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list lesson progress", err)
	}
	defer rows.Close()

	var progress []*lesson.Progress
	for rows.Next() {
		var p lesson.Progress
		var updatedAt int64

		err := rows.Scan(&p.UserID, &p.LessonID, &p.Seconds, &p.Completed, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan lesson progress", err)
		}

		p.UpdatedAt = time.Unix(updatedAt, 0)
		progress = append(progress, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate lesson progress", err)
	}

	return progress, nil
}
