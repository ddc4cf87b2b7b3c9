package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/pkg/db/models"
)

// UserDTO is a staff member as shown in warehouse and order pickers.
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	FullName    string     `json:"full_name"`
	Email       *string    `json:"email,omitempty"`
	Role        string     `json:"role"`
	WarehouseID *uuid.UUID `json:"warehouse_id,omitempty"`
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
}

func toDTO(u models.User) UserDTO {
	return UserDTO{
		ID:          u.ID,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		WarehouseID: u.WarehouseID,
		IsActive:    u.IsActive,
		CreatedAt:   u.CreatedAt.UTC(),
	}
}
