package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/pagination"
	"storefront/internal/review"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const productColumns = `id, user_id, name, description, brand, category, price,
	count_in_stock, image, rating, num_reviews, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	db     DB
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db DB, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row, p *model.Product) error {
	return row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.Brand, &p.Category, &p.Price,
		&p.CountInStock, &p.Image, &p.Rating, &p.NumReviews, &p.CreatedAt, &p.UpdatedAt,
	)
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		p.Reviews = []model.Review{}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// Count returns the number of products whose name contains search.
func (r *productRepository) Count(ctx context.Context, search string) (int, error) {
	query := `SELECT COUNT(*) FROM products WHERE name ILIKE '%' || $1 || '%'`

	var total int
	if err := r.db.QueryRow(ctx, query, pagination.EscapeLike(search)).Scan(&total); err != nil {
		r.logger.Error().Err(err).Str("search", search).Msg("failed to count products")
		return 0, fmt.Errorf("failed to count products: %w", err)
	}

	return total, nil
}

// Find returns a window of products matching search in insertion order.
func (r *productRepository) Find(ctx context.Context, search string, limit, skip int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY created_at, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, pagination.EscapeLike(search), limit, skip)
	if err != nil {
		r.logger.Error().Err(err).
			Str("search", search).
			Int("limit", limit).
			Int("skip", skip).
			Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	if err := r.attachReviews(ctx, r.db, products); err != nil {
		return nil, err
	}

	return products, nil
}

// Top returns the n highest rated products.
func (r *productRepository) Top(ctx context.Context, n int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		ORDER BY rating DESC, created_at
		LIMIT $1
	`

	rows, err := r.db.Query(ctx, query, n)
	if err != nil {
		r.logger.Error().Err(err).Int("limit", n).Msg("failed to query top products")
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	if err := r.attachReviews(ctx, r.db, products); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product with its reviews.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := r.getByID(ctx, r.db, id, false)
	if err != nil {
		return nil, err
	}
	if product == nil {
		r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
	}
	return product, nil
}

// getByID loads a product and its reviews through q, optionally locking the
// product row for the rest of the transaction.
func (r *productRepository) getByID(ctx context.Context, q querier, id uuid.UUID, forUpdate bool) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var p model.Product
	if err := scanProduct(q.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	reviews, err := r.reviewsFor(ctx, q, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	p.Reviews = reviews[id]
	if p.Reviews == nil {
		p.Reviews = []model.Review{}
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs, without reviews.
func (r *productRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, fmt.Errorf("failed to query products by IDs: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read product rows")
		return nil, err
	}

	return products, nil
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (id, user_id, name, description, brand, category, price,
			count_in_stock, image, rating, num_reviews, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.db.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Description, p.Brand, p.Category, p.Price,
		p.CountInStock, p.Image, p.Rating, p.NumReviews, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID.String()).Msg("product created")

	return nil
}

// Update applies a partial update under a row lock so the previous image
// reference returned is exactly the one the update replaced.
func (r *productRepository) Update(ctx context.Context, id uuid.UUID, update model.ProductUpdate) (*model.Product, string, error) {
	var (
		product       *model.Product
		previousImage string
	)

	err := withTx(ctx, r.db, r.logger, func(tx pgx.Tx) error {
		current, err := r.getByID(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if current == nil {
			return model.ErrProductNotFound
		}

		previousImage = current.Image
		update.Apply(current)

		query := `
			UPDATE products
			SET name = $2, description = $3, brand = $4, category = $5, price = $6,
				count_in_stock = $7, image = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING updated_at
		`

		err = tx.QueryRow(ctx, query,
			id, current.Name, current.Description, current.Brand, current.Category,
			current.Price, current.CountInStock, current.Image,
		).Scan(&current.UpdatedAt)
		if err != nil {
			r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to update product")
			return fmt.Errorf("failed to update product: %w", err)
		}

		product = current
		return nil
	})
	if err != nil {
		return nil, "", err
	}

	return product, previousImage, nil
}

// Delete removes a product and returns the deleted record.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns

	var p model.Product
	if err := scanProduct(r.db.QueryRow(ctx, query, id), &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found for delete")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	r.logger.Debug().Str("product_id", id.String()).Msg("product deleted")

	return &p, nil
}

// AddReview inserts the review and recomputes the product rating in one
// transaction. The unique (product_id, user_id) constraint makes the
// duplicate check and the insert a single atomic step.
func (r *productRepository) AddReview(ctx context.Context, rv *model.Review) (review.Summary, error) {
	var summary review.Summary

	err := withTx(ctx, r.db, r.logger, func(tx pgx.Tx) error {
		var locked uuid.UUID
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE id = $1 FOR UPDATE`, rv.ProductID).Scan(&locked)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return model.ErrProductNotFound
			}
			r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to lock product")
			return fmt.Errorf("failed to lock product: %w", err)
		}

		insert := `
			INSERT INTO reviews (id, product_id, user_id, name, rating, comment, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (product_id, user_id) DO NOTHING
		`
		tag, err := tx.Exec(ctx, insert,
			rv.ID, rv.ProductID, rv.UserID, rv.Name, rv.Rating, rv.Comment, rv.CreatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to insert review")
			return fmt.Errorf("failed to insert review: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrDuplicateReview
		}

		ratings, err := r.ratings(ctx, tx, rv.ProductID)
		if err != nil {
			return err
		}
		summary = review.Summarize(ratings)

		_, err = tx.Exec(ctx,
			`UPDATE products SET rating = $2, num_reviews = $3, updated_at = NOW() WHERE id = $1`,
			rv.ProductID, summary.Rating, summary.NumReviews,
		)
		if err != nil {
			r.logger.Error().Err(err).Str("product_id", rv.ProductID.String()).Msg("failed to update product rating")
			return fmt.Errorf("failed to update product rating: %w", err)
		}

		return nil
	})
	if err != nil {
		return review.Summary{}, err
	}

	return summary, nil
}

func (r *productRepository) ratings(ctx context.Context, q querier, productID uuid.UUID) ([]int, error) {
	rows, err := q.Query(ctx, `SELECT rating FROM reviews WHERE product_id = $1`, productID)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", productID.String()).Msg("failed to query ratings")
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var ratings []int
	for rows.Next() {
		var rating int
		if err := rows.Scan(&rating); err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return ratings, nil
}

// attachReviews loads the reviews of every product with a single query.
func (r *productRepository) attachReviews(ctx context.Context, q querier, products []model.Product) error {
	if len(products) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}

	byProduct, err := r.reviewsFor(ctx, q, ids)
	if err != nil {
		return err
	}

	for i := range products {
		if reviews, ok := byProduct[products[i].ID]; ok {
			products[i].Reviews = reviews
		}
	}

	return nil
}

func (r *productRepository) reviewsFor(ctx context.Context, q querier, ids []uuid.UUID) (map[uuid.UUID][]model.Review, error) {
	query := `
		SELECT id, product_id, user_id, name, rating, comment, created_at
		FROM reviews
		WHERE product_id = ANY($1)
		ORDER BY created_at, id
	`

	rows, err := q.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	byProduct := make(map[uuid.UUID][]model.Review, len(ids))
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.UserID, &rv.Name, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan review row")
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		byProduct[rv.ProductID] = append(byProduct[rv.ProductID], rv)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating review rows")
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return byProduct, nil
}
