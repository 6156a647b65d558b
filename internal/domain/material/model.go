package material

import (
	"context"
	"time"
)

// Material represents a didactic material available for download
type Material struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	FileURL     string    `json:"file_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Repository defines the interface for material data access
type Repository interface {
	Create(ctx context.Context, m *Material) error
	GetByID(ctx context.Context, id int64) (*Material, error)
	List(ctx context.Context) ([]*Material, error)
	Update(ctx context.Context, m *Material) error
	Delete(ctx context.Context, id int64) error
}

// Service defines material business operations
type Service interface {
	Create(ctx context.Context, title, description, fileURL string) (*Material, error)
	Get(ctx context.Context, id int64) (*Material, error)
	List(ctx context.Context) ([]*Material, error)
	Update(ctx context.Context, m *Material) error
	Delete(ctx context.Context, id int64) error
}
