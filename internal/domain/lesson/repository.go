package lesson

import "context"

// Repository defines the interface for lesson data access
type Repository interface {
	Create(ctx context.Context, l *Lesson) error
	GetByID(ctx context.Context, id int64) (*Lesson, error)
	List(ctx context.Context) ([]*Lesson, error)
	Update(ctx context.Context, l *Lesson) error
	Delete(ctx context.Context, id int64) error

	// UpsertProgress records a student's progress in a lesson
	UpsertProgress(ctx context.Context, p *Progress) error

	// ListProgress lists a student's progress across lessons
	ListProgress(ctx context.Context, userID int64) ([]*Progress, error)
}

// Service defines lesson business operations
type Service interface {
	Create(ctx context.Context, title, description, videoURL string, position int) (*Lesson, error)
	Get(ctx context.Context, id int64) (*Lesson, error)
	List(ctx context.Context) ([]*Lesson, error)
	Update(ctx context.Context, l *Lesson) error
	Delete(ctx context.Context, id int64) error
	SaveProgress(ctx context.Context, userID, lessonID int64, seconds int, completed bool) error
	ProgressFor(ctx context.Context, userID int64) ([]*Progress, error)
}
