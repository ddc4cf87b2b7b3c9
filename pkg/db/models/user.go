package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a staff member who can own warehouses and create purchase orders.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FullName    string     `gorm:"column:full_name;not null"`
	Email       *string    `gorm:"column:email"`
	Role        string     `gorm:"column:role;not null;default:'buyer'"`
	WarehouseID *uuid.UUID `gorm:"column:warehouse_id;type:uuid"`
	IsActive    bool       `gorm:"column:is_active;not null;default:true"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
