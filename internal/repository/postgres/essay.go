package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// EssayRepository implements essay.Repository
type EssayRepository struct {
	db *sql.DB
}

// NewEssayRepository creates a new essay repository
func NewEssayRepository(db *sql.DB) essay.Repository {
	return &EssayRepository{db: db}
}

const essayColumns = `id, user_id, theme_id, file_url, submitted_at,
	correction_status, correction_score, correction_assigned_to,
	correction_completed_at, correction_file_url, correction_audio_url`

// CreateEssay persists a new submission with a pending correction
func (r *EssayRepository) CreateEssay(ctx context.Context, e *essay.Essay) error {
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	if e.Correction.Status == "" {
		e.Correction.Status = essay.CorrectionPending
	}

	query := `
		INSERT INTO essays (user_id, theme_id, file_url, submitted_at, correction_status)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		e.UserID, e.ThemeID, e.FileURL, e.SubmittedAt.Unix(), e.Correction.Status,
	)
	if err != nil {
		return errors.DatabaseError("Failed to create essay", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get essay ID", err)
	}

	e.ID = id
	return nil
}

// GetEssay retrieves an essay by ID
func (r *EssayRepository) GetEssay(ctx context.Context, id int64) (*essay.Essay, error) {
	query := `SELECT ` + essayColumns + ` FROM essays WHERE id = ?`

	e, err := scanEssay(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Essay")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get essay", err)
	}
	return e, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEssay(row rowScanner) (*essay.Essay, error) {
	var e essay.Essay
	var submittedAt int64
	var score, assignedTo, completedAt sql.NullInt64
	var correctionFile, audioFile sql.NullString

	err := row.Scan(&e.ID, &e.UserID, &e.ThemeID, &e.FileURL, &submittedAt,
		&e.Correction.Status, &score, &assignedTo, &completedAt, &correctionFile, &audioFile)
	if err != nil {
		return nil, err
	}

	e.SubmittedAt = time.Unix(submittedAt, 0)
	if score.Valid {
		v := int(score.Int64)
		e.Correction.Score = &v
	}
	if assignedTo.Valid {
		v := assignedTo.Int64
		e.Correction.AssignedTo = &v
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		e.Correction.CompletedAt = &t
	}
	if correctionFile.Valid {
		e.Correction.CorrectionFileURL = correctionFile.String
	}
	if audioFile.Valid {
		e.Correction.AudioFileURL = audioFile.String
	}
	return &e, nil
}

// ListByUser lists a student's essays, newest first
func (r *EssayRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*essay.Essay, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM essays WHERE user_id = ?", userID).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count essays", err)
	}

	query := `
		SELECT ` + essayColumns + `
		FROM essays
		WHERE user_id = ?
		ORDER BY submitted_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	essays, err := r.listEssays(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return essays, total, nil
}

// ListPending lists essays awaiting correction, oldest first
func (r *EssayRepository) ListPending(ctx context.Context, limit, offset int) ([]*essay.Essay, int64, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM essays WHERE correction_status = ?", essay.CorrectionPending).Scan(&total)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to count essays", err)
	}

	query := `
		SELECT ` + essayColumns + `
		FROM essays
		WHERE correction_status = ?
		ORDER BY submitted_at ASC, id ASC
		LIMIT ? OFFSET ?
	`

	essays, err := r.listEssays(ctx, query, essay.CorrectionPending, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return essays, total, nil
}

func (r *EssayRepository) listEssays(ctx context.Context, query string, args ...interface{}) ([]*essay.Essay, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list essays", err)
	}
	defer rows.Close()

	var essays []*essay.Essay
	for rows.Next() {
		e, err := scanEssay(rows)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan essay", err)
		}
		essays = append(essays, e)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate essays", err)
	}

	return essays, nil
}

// UpdateCorrection persists the completed correction
func (r *EssayRepository) UpdateCorrection(ctx context.Context, id int64, c essay.Correction) error {
	query := `
		UPDATE essays
		SET correction_status = ?, correction_score = ?, correction_assigned_to = ?,
			correction_completed_at = ?, correction_file_url = ?, correction_audio_url = ?
		WHERE id = ?
	`

	var score interface{}
	if c.Score != nil {
		score = *c.Score
	}
	var assignedTo interface{}
	if c.AssignedTo != nil {
		assignedTo = *c.AssignedTo
	}

	result, err := r.db.ExecContext(ctx, query,
		c.Status, score, assignedTo, nullUnix(c.CompletedAt), c.CorrectionFileURL, c.AudioFileURL, id,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update correction", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Essay")
	}
	return nil
}

// CreateTheme persists a new essay prompt
func (r *EssayRepository) CreateTheme(ctx context.Context, t *essay.Theme) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO essay_themes (title, description, active, created_at)
		VALUES (?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query, t.Title, t.Description, t.Active, t.CreatedAt.Unix())
	if err != nil {
		return errors.DatabaseError("Failed to create theme", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get theme ID", err)
	}

	t.ID = id
	return nil
}

// GetTheme retrieves a theme by ID
func (r *EssayRepository) GetTheme(ctx context.Context, id int64) (*essay.Theme, error) {
	query := `SELECT id, title, description, active, created_at FROM essay_themes WHERE id = ?`

	var t essay.Theme
	var createdAt int64

	err := r.db.QueryRowContext(ctx, query, id).Scan(&t.ID, &t.Title, &t.Description, &t.Active, &createdAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Theme")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get theme", err)
	}

	t.CreatedAt = time.Unix(createdAt, 0)
	return &t, nil
}

// ListThemes lists themes; activeOnly hides retired prompts
func (r *EssayRepository) ListThemes(ctx context.Context, activeOnly bool) ([]*essay.Theme, error) {
	query := `SELECT id, title, description, active, created_at FROM essay_themes`
	var args []interface{}
	if activeOnly {
		query += ` WHERE active = ?`
		args = append(args, true)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list themes", err)
	}
	defer rows.Close()

	var themes []*essay.Theme
	for rows.Next() {
		var t essay.Theme
		var createdAt int64

		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Active, &createdAt); err != nil {
			return nil, errors.DatabaseError("Failed to scan theme", err)
		}

		t.CreatedAt = time.Unix(createdAt, 0)
		themes = append(themes, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate themes", err)
	}

	return themes, nil
}

// UpdateTheme updates a theme
func (r *EssayRepository) UpdateTheme(ctx context.Context, t *essay.Theme) error {
	query := `UPDATE essay_themes SET title = ?, description = ?, active = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, t.Title, t.Description, t.Active, t.ID)
	if err != nil {
		return errors.DatabaseError("Failed to update theme", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Theme")
	}
	return nil
}
