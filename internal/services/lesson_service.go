package services

import (
	"context"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/lesson"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
)

// LessonService implements lesson.Service
type LessonService struct {
	repo   lesson.Repository
	logger *logger.Logger
}

// NewLessonService creates a new lesson service
func NewLessonService(repo lesson.Repository, log *logger.Logger) lesson.Service {
	return &LessonService{repo: repo, logger: log}
}

// Create persists a new video lesson
func (s *LessonService) Create(ctx context.Context, title, description, videoURL string, position int) (*lesson.Lesson, error) {
	l := &lesson.Lesson{
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		Position:    position,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create lesson")
		return nil, err
	}
	return l, nil
}

// Get retrieves a lesson by ID
func (s *LessonService) Get(ctx context.Context, id int64) (*lesson.Lesson, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists all lessons ordered by position
func (s *LessonService) List(ctx context.Context) ([]*lesson.Lesson, error) {
	return s.repo.List(ctx)
}

// Update updates a lesson
func (s *LessonService) Update(ctx context.Context, l *lesson.Lesson) error {
	return s.repo.Update(ctx, l)
}

// Delete removes a lesson
func (s *LessonService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// SaveProgress records a student's progress in a lesson
func (s *LessonService) SaveProgress(ctx context.Context, userID, lessonID int64, seconds int, completed bool) error {
	if _, err := s.repo.GetByID(ctx, lessonID); err != nil {
		return err
	}
	return s.repo.UpsertProgress(ctx, &lesson.Progress{
		UserID:    userID,
		LessonID:  lessonID,
		Seconds:   seconds,
		Completed: completed,
		UpdatedAt: time.Now(),
	})
}

// ProgressFor lists a student's progress across lessons
func (s *LessonService) ProgressFor(ctx context.Context, userID int64) ([]*lesson.Progress, error) {
	return s.repo.ListProgress(ctx, userID)
}
