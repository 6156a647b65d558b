package passwordreset

import "context"

// Repository defines the interface for reset token data access
type Repository interface {
	// Create persists a freshly issued token
	Create(ctx context.Context, t *Token) error

	// Get retrieves a token by its opaque value
	Get(ctx context.Context, token string) (*Token, error)

	// Update persists state transitions (used flag, step, password hash)
	Update(ctx context.Context, t *Token) error

	// GetLatestByEmail retrieves the most recent token for an email at the
	// given step
	GetLatestByEmail(ctx context.Context, email, step string) (*Token, error)
}

// SubmitResult is returned when a new password is accepted for a token.
type SubmitResult struct {
	Success  bool   `json:"success"`
	NextStep string `json:"nextStep"`
}

// Service drives the reset state machine. Each transition is implemented
// exactly once; any step failure returns a structured error and the caller
// re-drives the flow from the appropriate step.
type Service interface {
	// Request issues a token and emails a reset link. When no account matches
	// the email it does nothing but still reports success, so callers cannot
	// probe which addresses exist.
	Request(ctx context.Context, email string) error

	// SubmitNewPassword validates the token and stages the new credential on
	// the token itself. The account credential is not touched yet.
	SubmitNewPassword(ctx context.Context, token, newPassword string) (*SubmitResult, error)

	// Finalize authenticates with the current password and applies the staged
	// credential to the account.
	Finalize(ctx context.Context, email, currentPassword string) error

	// CheckCredentials reports whether the email/password pair currently
	// authenticates, so clients can decide which step to drive next.
	CheckCredentials(ctx context.Context, email, password string) (bool, error)
}
