package repository

import (
	"context"
	"time"

	"storefront/internal/model"
	"storefront/internal/review"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ProductRepository defines the interface for product data access operations.
type ProductRepository interface {
	// Count returns the number of products whose name contains search.
	Count(ctx context.Context, search string) (int, error)

	// Find returns products whose name contains search, case-insensitively,
	// in insertion order, skipping skip records and returning at most limit.
	Find(ctx context.Context, search string, limit, skip int) ([]model.Product, error)

	// Top returns the n highest rated products.
	Top(ctx context.Context, n int) ([]model.Product, error)

	// GetByID retrieves a single product with its reviews.
	// Returns nil without error when the product does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// GetByIDs retrieves multiple products by their IDs, without reviews.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)

	// Create inserts a new product.
	Create(ctx context.Context, product *model.Product) error

	// Update applies a partial update in a single transaction and returns the
	// stored product together with the image reference it had before.
	Update(ctx context.Context, id uuid.UUID, update model.ProductUpdate) (*model.Product, string, error)

	// Delete removes a product and returns the deleted record.
	// Returns nil without error when the product does not exist.
	Delete(ctx context.Context, id uuid.UUID) (*model.Product, error)

	// AddReview inserts a review unless the user already reviewed the product,
	// then recomputes the product's rating from all of its reviews.
	AddReview(ctx context.Context, r *model.Review) (review.Summary, error)
}

// OrderRepository defines the interface for order data access operations.
type OrderRepository interface {
	// BeginTx starts a new database transaction.
	BeginTx(ctx context.Context) (pgx.Tx, error)

	// CreateOrder inserts a new order within the provided transaction.
	CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error

	// CreateOrderItems inserts multiple order items within the provided transaction.
	CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error

	// GetByID retrieves an order by its ID along with its items.
	// Returns nil without error when the order does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error)

	// List retrieves every order, newest first.
	List(ctx context.Context) ([]model.Order, error)

	// ListByUser retrieves the orders placed by a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error)

	// MarkPaid records the payment result and flags the order as paid.
	// Returns false when the order does not exist.
	MarkPaid(ctx context.Context, id uuid.UUID, result model.PaymentResult, at time.Time) (bool, error)

	// MarkDelivered flags the order as delivered.
	// Returns false when the order does not exist.
	MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// Delete removes an order and its items.
	// Returns false when the order does not exist.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// UserRepository defines read access to user accounts.
type UserRepository interface {
	// GetIdentity retrieves the public identity of a user.
	// Returns nil without error when the user does not exist.
	GetIdentity(ctx context.Context, id uuid.UUID) (*model.Identity, error)
}
