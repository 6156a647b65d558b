package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/passwordreset"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// PasswordResetRepository implements passwordreset.Repository
type PasswordResetRepository struct {
	db *sql.DB
}

// NewPasswordResetRepository creates a new password reset repository
func NewPasswordResetRepository(db *sql.DB) passwordreset.Repository {
	return &PasswordResetRepository{db: db}
}

// Create persists a freshly issued token
func (r *PasswordResetRepository) Create(ctx context.Context, t *passwordreset.Token) error {
	query := `
		INSERT INTO password_resets (token, email, expires_at, used, new_password_hash, step, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		t.Token, t.Email, t.ExpiresAt.Unix(), t.Used, t.NewPasswordHash, t.Step,
		t.CreatedAt.Unix(), nullUnix(t.CompletedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create reset token", err)
	}
	return nil
}

// Get retrieves a token by its opaque value
func (r *PasswordResetRepository) Get(ctx context.Context, token string) (*passwordreset.Token, error) {
	query := `
		SELECT token, email, expires_at, used, new_password_hash, step, created_at, completed_at
		FROM password_resets WHERE token = ?
	`
	return scanResetToken(r.db.QueryRowContext(ctx, query, token))
}

// Update persists state transitions (used flag, step, password hash)
func (r *PasswordResetRepository) Update(ctx context.Context, t *passwordreset.Token) error {
	query := `
		UPDATE password_resets
		SET used = ?, new_password_hash = ?, step = ?, completed_at = ?
		WHERE token = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		t.Used, t.NewPasswordHash, t.Step, nullUnix(t.CompletedAt), t.Token,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update reset token", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Reset token")
	}
	return nil
}

// GetLatestByEmail retrieves the most recent token for an email at the given step
func (r *PasswordResetRepository) GetLatestByEmail(ctx context.Context, email, step string) (*passwordreset.Token, error) {
	query := `
		SELECT token, email, expires_at, used, new_password_hash, step, created_at, completed_at
		FROM password_resets
		WHERE email = ? AND step = ?
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanResetToken(r.db.QueryRowContext(ctx, query, email, step))
}

func scanResetToken(row *sql.Row) (*passwordreset.Token, error) {
	var t passwordreset.Token
	var expiresAt, createdAt int64
	var completedAt sql.NullInt64

	err := row.Scan(&t.Token, &t.Email, &expiresAt, &t.Used, &t.NewPasswordHash, &t.Step, &createdAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Reset token")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get reset token", err)
	}

	t.ExpiresAt = time.Unix(expiresAt, 0)
	t.CreatedAt = time.Unix(createdAt, 0)
	if completedAt.Valid {
		c := time.Unix(completedAt.Int64, 0)
		t.CompletedAt = &c
	}
	return &t, nil
}
