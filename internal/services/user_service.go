package services

import (
	"context"
	"strings"

	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/pkg/errors"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

// UserService implements user.Service
type UserService struct {
	repo       user.Repository
	subRepo    subscription.Repository
	logger     *logger.Logger
	bcryptCost int
}

// NewUserService creates a new user service
func NewUserService(repo user.Repository, subRepo subscription.Repository, log *logger.Logger, bcryptCost int) user.Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserService{
		repo:       repo,
		subRepo:    subRepo,
		logger:     log,
		bcryptCost: bcryptCost,
	}
}

// Register creates a student account and its free subscription
func (s *UserService) Register(ctx context.Context, email, name, password string) (*user.User, error) {
	return s.create(ctx, email, name, password, user.RoleStudent)
}

// CreateStaff creates a professor or admin account
func (s *UserService) CreateStaff(ctx context.Context, email, name, password, role string) (*user.User, error) {
	if role != user.RoleProfessor && role != user.RoleAdmin {
		return nil, errors.BadRequest("role must be professor or admin")
	}
	return s.create(ctx, email, name, password, role)
}

func (s *UserService) create(ctx context.Context, email, name, password, role string) (*user.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("Failed to hash password", err)
	}

	u := &user.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create user")
		return nil, err
	}

	// Students start on the free plan with an empty token balance.
	if role == user.RoleStudent {
		sub := &subscription.Subscription{
			UserID: u.ID,
			Type:   subscription.PlanFree,
			Status: subscription.StatusActive,
		}
		if err := s.subRepo.Create(ctx, sub); err != nil {
			s.logger.ErrorWithErr(err, "Failed to create subscription for new student")
			return nil, err
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"user_id": u.ID,
		"email":   u.Email,
		"role":    u.Role,
	}).Info("User created")

	return u, nil
}

// Authenticate verifies email and password
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, errors.Unauthorized("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, errors.Unauthorized("Invalid credentials")
	}
	return u, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id int64) (*user.User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail retrieves a user by email
func (s *UserService) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// VerifyPassword checks a candidate password against the stored hash without
// failing the request when the password is wrong
func (s *UserService) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil, nil
}

// SetPasswordHash applies an already-hashed credential to the account
func (s *UserService) SetPasswordHash(ctx context.Context, userID int64, passwordHash string) error {
	if err := s.repo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		s.logger.ErrorWithErr(err, "Failed to update password")
		return err
	}
	s.logger.WithFields(map[string]interface{}{
		"user_id": userID,
	}).Info("Password updated")
	return nil
}

// ProfessorEmails lists every professor address for notifications
func (s *UserService) ProfessorEmails(ctx context.Context) ([]string, error) {
	return s.repo.ListEmailsByRole(ctx, user.RoleProfessor)
}
