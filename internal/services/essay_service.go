package services

import (
	"context"
	"time"

	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/pkg/metrics"
)

// EssayService implements essay.Service
type EssayService struct {
	repo   essay.Repository
	subs   subscription.Service
	users  user.Service
	mailer Mailer
	logger *logger.Logger
	now    func() time.Time
}

// NewEssayService creates a new essay service
func NewEssayService(
	repo essay.Repository,
	subs subscription.Service,
	users user.Service,
	mailer Mailer,
	log *logger.Logger,
) *EssayService {
	return &EssayService{
		repo:   repo,
		subs:   subs,
		users:  users,
		mailer: mailer,
		logger: log,
		now:    time.Now,
	}
}

// Submit validates entitlement, consumes a correction token and records the
// essay with a pending correction, then alerts professors by email.
//
// Token handling per plan: avulsa needs an available token and the submission
// fails when the conditional decrement finds none. The mestre/private/partner
// plans always admit the submission; their decrement is accounting only and
// the balance floors at zero.
func (s *EssayService) Submit(ctx context.Context, userID, themeID int64, fileURL string) (*essay.Essay, error) {
	sub, err := s.subs.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if sub.Status != subscription.StatusActive ||
		!subscription.HasFeatureAccess(sub.Type, subscription.FeatureEnvioRedacao, sub.HasActiveToken()) {
		return nil, errors.FeatureLocked(string(subscription.FeatureEnvioRedacao))
	}

	theme, err := s.repo.GetTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}

	consumed, err := s.subs.ConsumeToken(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !consumed && sub.Type == subscription.PlanAvulsa {
		return nil, errors.NoTokens()
	}

	e := &essay.Essay{
		UserID:      userID,
		ThemeID:     themeID,
		FileURL:     fileURL,
		SubmittedAt: s.now(),
		Correction:  essay.Correction{Status: essay.CorrectionPending},
	}
	if err := s.repo.CreateEssay(ctx, e); err != nil {
		return nil, err
	}

	metrics.RecordEssaySubmitted(sub.Type)
	s.logger.WithFields(map[string]interface{}{
		"essay_id": e.ID,
		"user_id":  userID,
		"theme_id": themeID,
	}).Info("Essay submitted")

	s.notifyProfessors(ctx, userID, theme.Title)

	return e, nil
}

// notifyProfessors emails every professor about the submission. Notification
// failure does not fail the submission.
func (s *EssayService) notifyProfessors(ctx context.Context, studentID int64, themeTitle string) {
	student, err := s.users.GetByID(ctx, studentID)
	if err != nil {
		s.logger.ErrorWithErr(err, "Failed to load student for essay notification")
		return
	}
	emails, err := s.users.ProfessorEmails(ctx)
	if err != nil || len(emails) == 0 {
		s.logger.Warn("No professor emails available for essay notification")
		return
	}
	if err := s.mailer.SendEssayNotification(ctx, emails, student.Name, themeTitle); err != nil {
		s.logger.ErrorWithErr(err, "Failed to send essay notification")
	}
}

// NotifyProfessors re-sends the professor notification for an existing essay.
// Unlike the automatic send on submission, a failure here is reported to the
// caller so the operator knows the resend did not go out.
func (s *EssayService) NotifyProfessors(ctx context.Context, essayID int64) error {
	e, err := s.repo.GetEssay(ctx, essayID)
	if err != nil {
		return err
	}
	theme, err := s.repo.GetTheme(ctx, e.ThemeID)
	if err != nil {
		return err
	}
	student, err := s.users.GetByID(ctx, e.UserID)
	if err != nil {
		return err
	}
	emails, err := s.users.ProfessorEmails(ctx)
	if err != nil {
		return err
	}
	if len(emails) == 0 {
		return errors.NotFound("Professor emails")
	}
	return s.mailer.SendEssayNotification(ctx, emails, student.Name, theme.Title)
}

// Get retrieves an essay, restricted to its owner or staff
func (s *EssayService) Get(ctx context.Context, requesterID int64, requesterStaff bool, id int64) (*essay.Essay, error) {
	e, err := s.repo.GetEssay(ctx, id)
	if err != nil {
		return nil, err
	}
	if !requesterStaff && e.UserID != requesterID {
		return nil, errors.Forbidden("Essay belongs to another student")
	}
	return e, nil
}

// ListMine lists the requesting student's essays
func (s *EssayService) ListMine(ctx context.Context, userID int64, limit, offset int) ([]*essay.Essay, int64, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListPending lists essays awaiting correction for professors
func (s *EssayService) ListPending(ctx context.Context, limit, offset int) ([]*essay.Essay, int64, error) {
	return s.repo.ListPending(ctx, limit, offset)
}

// CompleteCorrection records the professor's finished correction. A
// correction is written once; completed essays reject further updates.
func (s *EssayService) CompleteCorrection(ctx context.Context, essayID, professorID int64, status string, score *int, correctionFileURL, audioFileURL string) (*essay.Essay, error) {
	if status != essay.CorrectionDone && status != essay.CorrectionRejected {
		return nil, errors.BadRequest("status must be done or rejected")
	}
	if status == essay.CorrectionDone && score == nil {
		return nil, errors.BadRequest("score is required for a completed correction")
	}

	e, err := s.repo.GetEssay(ctx, essayID)
	if err != nil {
		return nil, err
	}
	if e.Correction.Status != essay.CorrectionPending {
		return nil, errors.Conflict("Correction already completed")
	}

	now := s.now()
	e.Correction = essay.Correction{
		Status:            status,
		Score:             score,
		AssignedTo:        &professorID,
		CompletedAt:       &now,
		CorrectionFileURL: correctionFileURL,
		AudioFileURL:      audioFileURL,
	}
	if err := s.repo.UpdateCorrection(ctx, essayID, e.Correction); err != nil {
		return nil, err
	}

	metrics.RecordCorrectionCompleted(status)
	s.logger.WithFields(map[string]interface{}{
		"essay_id":     essayID,
		"professor_id": professorID,
		"status":       status,
	}).Info("Correction completed")

	return e, nil
}

// CreateTheme persists a new essay prompt
func (s *EssayService) CreateTheme(ctx context.Context, title, description string) (*essay.Theme, error) {
	t := &essay.Theme{
		Title:       title,
		Description: description,
		Active:      true,
		CreatedAt:   s.now(),
	}
	if err := s.repo.CreateTheme(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// GetTheme retrieves a theme by ID
func (s *EssayService) GetTheme(ctx context.Context, id int64) (*essay.Theme, error) {
	return s.repo.GetTheme(ctx, id)
}

// ListThemes lists themes
func (s *EssayService) ListThemes(ctx context.Context, activeOnly bool) ([]*essay.Theme, error) {
	return s.repo.ListThemes(ctx, activeOnly)
}

// UpdateTheme updates a theme
func (s *EssayService) UpdateTheme(ctx context.Context, t *essay.Theme) error {
	return s.repo.UpdateTheme(ctx, t)
}

// RetireTheme hides a theme from students without deleting it
func (s *EssayService) RetireTheme(ctx context.Context, id int64) error {
	t, err := s.repo.GetTheme(ctx, id)
	if err != nil {
		return err
	}
	t.Active = false
	return s.repo.UpdateTheme(ctx, t)
}
