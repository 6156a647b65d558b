package services

import (
	"context"

	"github.com/mestre-da-redacao/backend/internal/domain/material"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
)

// MaterialService implements material.Service
type MaterialService struct {
	repo   material.Repository
	logger *logger.Logger
}

// NewMaterialService creates a new material service
func NewMaterialService(repo material.Repository, log *logger.Logger) material.Service {
	return &MaterialService{repo: repo, logger: log}
}

// Create persists a new didactic material
func (s *MaterialService) Create(ctx context.Context, title, description, fileURL string) (*material.Material, error) {
	m := &material.Material{
		Title:       title,
		Description: description,
		FileURL:     fileURL,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.ErrorWithErr(err, "Failed to create material")
		return nil, err
	}
	return m, nil
}

// Get retrieves a material by ID
func (s *MaterialService) Get(ctx context.Context, id int64) (*material.Material, error) {
	return s.repo.GetByID(ctx, id)
}

// List lists all materials
func (s *MaterialService) List(ctx context.Context) ([]*material.Material, error) {
	return s.repo.List(ctx)
}

// Update updates a material
func (s *MaterialService) Update(ctx context.Context, m *material.Material) error {
	return s.repo.Update(ctx, m)
}

// Delete removes a material
func (s *MaterialService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
