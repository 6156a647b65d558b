package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
)

// SubscriptionRepository implements subscription.Repository
type SubscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new subscription repository
func NewSubscriptionRepository(db *sql.DB) subscription.Repository {
	return &SubscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, type, status, tokens_available, legacy_unlimited, last_token_reset, created_at, updated_at`

// Create creates a new subscription
func (r *SubscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now

	query := `
		INSERT INTO subscriptions (user_id, type, status, tokens_available, legacy_unlimited, last_token_reset, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		s.UserID, s.Type, s.Status, s.TokensAvailable, s.LegacyUnlimited,
		nullUnix(s.LastTokenReset), now.Unix(), now.Unix(),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create subscription", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get subscription ID", err)
	}

	s.ID = id
	return nil
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE id = ?`
	return scanSubscription(r.db.QueryRowContext(ctx, query, id))
}

// GetByUserID retrieves the subscription belonging to a user
func (r *SubscriptionRepository) GetByUserID(ctx context.Context, userID int64) (*subscription.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = ?`
	return scanSubscription(r.db.QueryRowContext(ctx, query, userID))
}

func scanSubscription(row *sql.Row) (*subscription.Subscription, error) {
	var s subscription.Subscription
	var lastReset sql.NullInt64
	var createdAt, updatedAt int64

	err := row.Scan(&s.ID, &s.UserID, &s.Type, &s.Status, &s.TokensAvailable,
		&s.LegacyUnlimited, &lastReset, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("Subscription")
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get subscription", err)
	}

	if lastReset.Valid {
		t := time.Unix(lastReset.Int64, 0)
		s.LastTokenReset = &t
	}
	s.CreatedAt = time.Unix(createdAt, 0)
	s.UpdatedAt = time.Unix(updatedAt, 0)
	return &s, nil
}

// Update updates plan type, status and token fields
func (r *SubscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	s.UpdatedAt = time.Now()

	query := `
		UPDATE subscriptions
		SET type = ?, status = ?, tokens_available = ?, legacy_unlimited = ?, last_token_reset = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		s.Type, s.Status, s.TokensAvailable, s.LegacyUnlimited,
		nullUnix(s.LastTokenReset), s.UpdatedAt.Unix(), s.ID,
	)
	if err != nil {
		return errors.DatabaseError("Failed to update subscription", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

// ConsumeToken atomically decrements the token balance by one, but only while
// the balance is positive. Concurrent submissions race on the WHERE clause,
// so the balance can never go negative.
func (r *SubscriptionRepository) ConsumeToken(ctx context.Context, id int64) (bool, error) {
	query := `
		UPDATE subscriptions
		SET tokens_available = tokens_available - 1, updated_at = ?
		WHERE id = ? AND tokens_available > 0
	`

	result, err := r.db.ExecContext(ctx, query, time.Now().Unix(), id)
	if err != nil {
		return false, errors.DatabaseError("Failed to consume token", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, errors.DatabaseError("Failed to get affected rows", err)
	}
	return rows > 0, nil
}

// AddTokens credits n tokens to the balance
func (r *SubscriptionRepository) AddTokens(ctx context.Context, id int64, n int) error {
	query := `
		UPDATE subscriptions
		SET tokens_available = tokens_available + ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, n, time.Now().Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to add tokens", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

// ApplyMonthlyReset sets the balance to quota and stamps lastTokenReset
func (r *SubscriptionRepository) ApplyMonthlyReset(ctx context.Context, id int64, quota int, now time.Time) error {
	query := `
		UPDATE subscriptions
		SET tokens_available = ?, last_token_reset = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, quota, now.Unix(), now.Unix(), id)
	if err != nil {
		return errors.DatabaseError("Failed to apply monthly reset", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Subscription")
	}
	return nil
}

// ClearLegacyUnlimited rewrites a deprecated unlimited subscription to a
// finite balance and removes the flag
func (r *SubscriptionRepository) ClearLegacyUnlimited(ctx context.Context, id int64, quota int) error {
	now := time.Now()
	query := `
		UPDATE subscriptions
		SET tokens_available = ?, legacy_unlimited = ?, last_token_reset = ?, updated_at = ?
		WHERE id = ? AND legacy_unlimited = ?
	`

	_, err := r.db.ExecContext(ctx, query, quota, false, now.Unix(), now.Unix(), id, true)
	if err != nil {
		return errors.DatabaseError("Failed to clear legacy unlimited flag", err)
	}
	return nil
}

// ListForMaintenance lists active subscriptions whose plan participates in
// monthly resets or the legacy migration
func (r *SubscriptionRepository) ListForMaintenance(ctx context.Context) ([]*subscription.Subscription, error) {
	query := `
		SELECT ` + subscriptionColumns + `
		FROM subscriptions
		WHERE status = ? AND (type = ? OR legacy_unlimited = ?)
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, subscription.StatusActive, subscription.PlanMestre, true)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list subscriptions", err)
	}
	defer rows.Close()

	var subs []*subscription.Subscription
	for rows.Next() {
		var s subscription.Subscription
		var lastReset sql.NullInt64
		var createdAt, updatedAt int64

		err := rows.Scan(&s.ID, &s.UserID, &s.Type, &s.Status, &s.TokensAvailable,
			&s.LegacyUnlimited, &lastReset, &createdAt, &updatedAt)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan subscription", err)
		}

		if lastReset.Valid {
			t := time.Unix(lastReset.Int64, 0)
			s.LastTokenReset = &t
		}
		s.CreatedAt = time.Unix(createdAt, 0)
		s.UpdatedAt = time.Unix(updatedAt, 0)
		subs = append(subs, &s)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate subscriptions", err)
	}

	return subs, nil
}

// AppendPlanChange appends an audit record; records are never modified
func (r *SubscriptionRepository) AppendPlanChange(ctx context.Context, log *subscription.PlanChangeLog) error {
	query := `
		INSERT INTO plan_change_logs (student_id, old_plan, new_plan, changed_by, changed_at, reason, tokens_added)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		log.StudentID, log.OldPlan, log.NewPlan, log.ChangedBy, log.ChangedAt.Unix(), log.Reason, log.TokensAdded,
	)
	if err != nil {
		return errors.DatabaseError("Failed to append plan change", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.DatabaseError("Failed to get plan change ID", err)
	}

	log.ID = id
	return nil
}

// ListPlanChanges lists the audit trail for a student, newest first
func (r *SubscriptionRepository) ListPlanChanges(ctx context.Context, studentID int64) ([]*subscription.PlanChangeLog, error) {
	query := `
		SELECT id, student_id, old_plan, new_plan, changed_by, changed_at, reason, tokens_added
		FROM plan_change_logs
		WHERE student_id = ?
		ORDER BY changed_at DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, studentID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to list plan changes", err)
	}
	defer rows.Close()

	var logs []*subscription.PlanChangeLog
	for rows.Next() {
		var l subscription.PlanChangeLog
		var changedAt int64

		err := rows.Scan(&l.ID, &l.StudentID, &l.OldPlan, &l.NewPlan, &l.ChangedBy, &changedAt, &l.Reason, &l.TokensAdded)
		if err != nil {
			return nil, errors.DatabaseError("Failed to scan plan change", err)
		}

		l.ChangedAt = time.Unix(changedAt, 0)
		logs = append(logs, &l)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.DatabaseError("Failed to iterate plan changes", err)
	}

	return logs, nil
}

// nullUnix converts an optional time to a nullable unix timestamp.
func nullUnix(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}
