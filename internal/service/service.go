package service

import (
	"context"

	"storefront/internal/model"
	"storefront/internal/storage"

	"github.com/google/uuid"
)

// ProductQuery holds the raw listing parameters taken from the query string.
// Limit and Skip are untrusted and resolved by the pagination package.
type ProductQuery struct {
	Search string
	Limit  string
	Skip   string
}

// ImageJanitor removes images that are no longer referenced by any product.
type ImageJanitor interface {
	Schedule(ref string)
}

// ProductService defines operations for product management.
type ProductService interface {
	// List returns one window of the products matching the query.
	List(ctx context.Context, query ProductQuery) (*model.ProductPage, error)

	// Top returns the highest rated products.
	Top(ctx context.Context) ([]model.Product, error)

	// GetByID retrieves a single product by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// Create stores the image and creates a product owned by the caller.
	Create(ctx context.Context, identity *model.Identity, req *model.ProductRequest, image *storage.Upload) (*model.Product, error)

	// Update overwrites the fields present in update.
	Update(ctx context.Context, id uuid.UUID, update *model.ProductUpdate) (*model.Product, error)

	// Delete removes a product together with its image.
	Delete(ctx context.Context, id uuid.UUID) error

	// CreateReview adds the caller's review and refreshes the product rating.
	CreateReview(ctx context.Context, identity *model.Identity, productID uuid.UUID, req *model.ReviewRequest) (*model.Review, error)
}

// OrderService defines operations for order management.
type OrderService interface {
	// Create places an order for the caller, pricing it from stored products.
	Create(ctx context.Context, identity *model.Identity, req *model.OrderRequest) (*model.Order, error)

	// List retrieves every order.
	List(ctx context.Context) ([]model.Order, error)

	// ListMine retrieves the caller's orders.
	ListMine(ctx context.Context, identity *model.Identity) ([]model.Order, error)

	// GetByID retrieves an order by its ID with all items.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// Pay records a payment result and marks the order paid.
	Pay(ctx context.Context, id uuid.UUID, result *model.PaymentResult) (*model.Order, error)

	// Deliver marks the order delivered.
	Deliver(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// Delete removes an order.
	Delete(ctx context.Context, id uuid.UUID) error
}
