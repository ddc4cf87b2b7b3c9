package products

import (
	"time"

	"github.com/google/uuid"

	"github.com/bikurim/procurement-backend/internal/pricing"
	"github.com/bikurim/procurement-backend/pkg/db/models"
)

// DefaultUnit is applied when a product is created without a unit.
const DefaultUnit = "יח'"

// ProductDTO represents the catalog product payload returned to clients.
type ProductDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Code         *string    `json:"code"`
	CategoryID   *uuid.UUID `json:"category_id"`
	CategoryName *string    `json:"category_name,omitempty"`
	DefaultUnit  string     `json:"default_unit"`
	Description  *string    `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ProductDetailDTO adds the active suppliers offering the product.
type ProductDetailDTO struct {
	ProductDTO
	Suppliers []pricing.Offer `json:"suppliers"`
}

func FromModel(p models.Product, categoryName *string) ProductDTO {
	return ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Code:         p.Code,
		CategoryID:   p.CategoryID,
		CategoryName: categoryName,
		DefaultUnit:  p.DefaultUnit,
		Description:  p.Description,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
