package passwordreset

import "time"

// Token is a single-use password reset token. Rows are never deleted; the
// table doubles as an audit trail of every reset attempt.
type Token struct {
	Token           string     `json:"token"`
	Email           string     `json:"email"`
	ExpiresAt       time.Time  `json:"expires_at"`
	Used            bool       `json:"used"`
	NewPasswordHash string     `json:"-"` // bcrypt, set once a new password is submitted
	Step            string     `json:"step"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Reset flow steps. A token moves strictly forward:
// pending -> password_set -> completed.
const (
	StepPending     = "pending"
	StepPasswordSet = "password_set"
	StepCompleted   = "completed"
)

// Expired reports whether the token is past its expiry at the given instant.
func (t *Token) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
