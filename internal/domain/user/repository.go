package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates a user
	Update(ctx context.Context, user *User) error

	// UpdatePassword replaces the stored credential hash
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error

	// List retrieves users with pagination
	List(ctx context.Context, limit, offset int) ([]*User, int64, error)

	// ListEmailsByRole lists the email addresses of every user with the role
	ListEmailsByRole(ctx context.Context, role string) ([]string, error)
}

// Service defines user business operations
type Service interface {
	// Register creates a student account with a hashed credential
	Register(ctx context.Context, email, name, password string) (*User, error)

	// CreateStaff creates a professor or admin account
	CreateStaff(ctx context.Context, email, name, password, role string) (*User, error)

	// Authenticate verifies email and password
	Authenticate(ctx context.Context, email, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*User, error)

	// VerifyPassword checks a candidate password against the stored hash
	VerifyPassword(ctx context.Context, email, password string) (bool, error)

	// SetPasswordHash applies an already-hashed credential to the account
	SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error

	// ProfessorEmails lists every professor address for notifications
	ProfessorEmails(ctx context.Context) ([]string, error)
}
