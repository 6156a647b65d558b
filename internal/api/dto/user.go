package dto

import "github.com/mestre-da-redacao/backend/internal/domain/user"

// UserDTO represents user information in responses
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// NewUserDTO maps a domain user to its response shape
func NewUserDTO(u *user.User) *UserDTO {
	return &UserDTO{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  u.Role,
	}
}
