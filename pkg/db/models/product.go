package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog item that can be priced, stocked and ordered.
type Product struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string     `gorm:"column:name;not null"`
	Code        *string    `gorm:"column:code"`
	CategoryID  *uuid.UUID `gorm:"column:category_id;type:uuid"`
	DefaultUnit string     `gorm:"column:default_unit;not null"`
	Description *string    `gorm:"column:description"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
