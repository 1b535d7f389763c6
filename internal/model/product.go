package model

import (
	"time"

	"github.com/google/uuid"
)

// Product represents an item in the catalogue.
// Rating and NumReviews are derived from Reviews and never set directly.
type Product struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user" db:"user_id"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	Brand        string    `json:"brand" db:"brand"`
	Category     string    `json:"category" db:"category"`
	Price        float64   `json:"price" db:"price"`
	CountInStock int       `json:"countInStock" db:"count_in_stock"`
	Image        string    `json:"image" db:"image"`
	Rating       float64   `json:"rating" db:"rating"`
	NumReviews   int       `json:"numReviews" db:"num_reviews"`
	Reviews      []Review  `json:"reviews"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// Review is a single customer review. Name is a snapshot of the reviewer's
// display name at the time the review was written.
type Review struct {
	ID        uuid.UUID `json:"id" db:"id"`
	ProductID uuid.UUID `json:"-" db:"product_id"`
	UserID    uuid.UUID `json:"user" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Rating    int       `json:"rating" db:"rating"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ProductRequest represents the form fields accompanying a product upload.
type ProductRequest struct {
	Name         string  `json:"name" validate:"required,max=255"`
	Description  string  `json:"description" validate:"required"`
	Brand        string  `json:"brand" validate:"required,max=100"`
	Category     string  `json:"category" validate:"required,max=100"`
	Price        float64 `json:"price" validate:"gte=0"`
	CountInStock int     `json:"countInStock" validate:"gte=0"`
}

// ProductUpdate represents a partial product update. A nil field leaves the
// stored value untouched.
type ProductUpdate struct {
	Name         *string  `json:"name,omitempty" validate:"omitnil,min=1,max=255"`
	Description  *string  `json:"description,omitempty" validate:"omitnil,min=1"`
	Brand        *string  `json:"brand,omitempty" validate:"omitnil,min=1,max=100"`
	Category     *string  `json:"category,omitempty" validate:"omitnil,min=1,max=100"`
	Image        *string  `json:"image,omitempty" validate:"omitnil,min=1"`
	Price        *float64 `json:"price,omitempty" validate:"omitnil,gte=0"`
	CountInStock *int     `json:"countInStock,omitempty" validate:"omitnil,gte=0"`
}

// Apply overwrites the fields of p that are present in u.
func (u ProductUpdate) Apply(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.Image != nil {
		p.Image = *u.Image
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.CountInStock != nil {
		p.CountInStock = *u.CountInStock
	}
}

// ReviewRequest represents the request payload for reviewing a product.
type ReviewRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"required"`
}

// ProductPage is one window of the product listing.
type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	MaxLimit int       `json:"maxLimit"`
	MaxSkip  int       `json:"maxSkip"`
}
