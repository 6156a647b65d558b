package essay

import "context"

// Repository defines the interface for essay and theme data access
type Repository interface {
	// CreateEssay persists a new submission with a pending correction
	CreateEssay(ctx context.Context, e *Essay) error

	// GetEssay retrieves an essay by ID
	GetEssay(ctx context.Context, id int64) (*Essay, error)

	// ListByUser lists a student's essays, newest first
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*Essay, int64, error)

	// ListPending lists essays awaiting correction, oldest first
	ListPending(ctx context.Context, limit, offset int) ([]*Essay, int64, error)

	// UpdateCorrection persists the completed correction
	UpdateCorrection(ctx context.Context, id int64, c Correction) error

	// CreateTheme persists a new essay prompt
	CreateTheme(ctx context.Context, t *Theme) error

	// GetTheme retrieves a theme by ID
	GetTheme(ctx context.Context, id int64) (*Theme, error)

	// ListThemes lists themes; activeOnly hides retired prompts
	ListThemes(ctx context.Context, activeOnly bool) ([]*Theme, error)

	// UpdateTheme updates a theme
	UpdateTheme(ctx context.Context, t *Theme) error
}

// Service defines essay business operations
type Service interface {
	// Submit validates entitlement, consumes a correction token and records
	// the essay, then notifies professors
	Submit(ctx context.Context, userID, themeID int64, fileURL string) (*Essay, error)

	// Get retrieves an essay, restricted to its owner or staff
	Get(ctx context.Context, requesterID int64, requesterStaff bool, id int64) (*Essay, error)

	// ListMine lists the requesting student's essays
	ListMine(ctx context.Context, userID int64, limit, offset int) ([]*Essay, int64, error)

	// ListPending lists essays awaiting correction for professors
	ListPending(ctx context.Context, limit, offset int) ([]*Essay, int64, error)

	// CompleteCorrection records the professor's finished correction
	CompleteCorrection(ctx context.Context, essayID, professorID int64, status string, score *int, correctionFileURL, audioFileURL string) (*Essay, error)

	// NotifyProfessors re-sends the professor notification for an essay
	NotifyProfessors(ctx context.Context, essayID int64) error

	// Theme management
	CreateTheme(ctx context.Context, title, description string) (*Theme, error)
	GetTheme(ctx context.Context, id int64) (*Theme, error)
	ListThemes(ctx context.Context, activeOnly bool) ([]*Theme, error)
	UpdateTheme(ctx context.Context, t *Theme) error
	RetireTheme(ctx context.Context, id int64) error
}
