package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/pagination"
	"storefront/internal/repository"
	"storefront/internal/review"
	"storefront/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// TopProductsLimit is the number of products returned by Top.
const TopProductsLimit = 3

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	images      storage.ImageStore
	janitor     ImageJanitor
	maxLimit    int
	logger      zerolog.Logger
}

// NewProductService creates a new product service. maxLimit caps the page
// size of List.
func NewProductService(
	productRepo repository.ProductRepository,
	images storage.ImageStore,
	janitor ImageJanitor,
	maxLimit int,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo: productRepo,
		images:      images,
		janitor:     janitor,
		maxLimit:    maxLimit,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

// List counts the matching products, resolves the requested window against
// that count and loads the window.
func (s *productService) List(ctx context.Context, query ProductQuery) (*model.ProductPage, error) {
	total, err := s.productRepo.Count(ctx, query.Search)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	window := pagination.Resolve(total, query.Limit, query.Skip, s.maxLimit)

	products, err := s.productRepo.Find(ctx, query.Search, window.Limit, window.Skip)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", window.Limit).
			Int("skip", window.Skip).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	if len(products) == 0 {
		s.logger.Debug().Str("search", query.Search).Msg("no products in window")
		return nil, model.ErrNotFound.WithMessage("Products not found")
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", window.Limit).
		Int("skip", window.Skip).
		Int("total", window.Total).
		Msg("retrieved products")

	return &model.ProductPage{
		Products: products,
		Total:    window.Total,
		MaxLimit: window.MaxLimit,
		MaxSkip:  window.MaxSkip,
	}, nil
}

// Top retrieves the highest rated products.
func (s *productService) Top(ctx context.Context) ([]model.Product, error) {
	products, err := s.productRepo.Top(ctx, TopProductsLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top products: %w", err)
	}
	if len(products) == 0 {
		return nil, model.ErrNotFound.WithMessage("No products found")
	}
	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Create stores the image first and the record second. When the record
// cannot be written the stored image is scheduled for deletion.
func (s *productService) Create(ctx context.Context, identity *model.Identity, req *model.ProductRequest, image *storage.Upload) (*model.Product, error) {
	if image == nil || image.Body == nil {
		s.logger.Warn().Msg("product create without image")
		return nil, model.ErrImageRequired
	}

	ref, err := s.images.Save(ctx, image)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedType) {
			return nil, model.ErrValidationFailed.WithMessage("Images only: jpg, jpeg, png or webp")
		}
		s.logger.Error().Err(err).Str("filename", image.Filename).Msg("failed to store product image")
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	now := time.Now().UTC()
	product := &model.Product{
		ID:           uuid.New(),
		UserID:       identity.ID,
		Name:         req.Name,
		Description:  req.Description,
		Brand:        req.Brand,
		Category:     req.Category,
		Price:        req.Price,
		CountInStock: req.CountInStock,
		Image:        ref,
		Reviews:      []model.Review{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.janitor.Schedule(ref)
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("user_id", identity.ID.String()).
		Str("image", ref).
		Msg("product created")

	return product, nil
}

// Update applies the partial update. A replaced image is deleted only after
// the new reference has been committed.
func (s *productService) Update(ctx context.Context, id uuid.UUID, update *model.ProductUpdate) (*model.Product, error) {
	product, previousImage, err := s.productRepo.Update(ctx, id, *update)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			s.logger.Debug().Str("product_id", id.String()).Msg("product not found for update")
			return nil, err
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if previousImage != product.Image {
		s.janitor.Schedule(previousImage)
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")

	return product, nil
}

// Delete removes the product record, then its image in the background.
func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	product, err := s.productRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", id.String()).Msg("product not found for delete")
		return model.ErrProductNotFound
	}

	s.janitor.Schedule(product.Image)

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")

	return nil
}

// CreateReview rejects a second review by the same user and otherwise stores
// the review with the caller's current display name.
func (s *productService) CreateReview(ctx context.Context, identity *model.Identity, productID uuid.UUID, req *model.ReviewRequest) (*model.Review, error) {
	product, err := s.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	if _, found := review.FindByUser(product.Reviews, identity.ID); found {
		s.logger.Warn().
			Str("product_id", productID.String()).
			Str("user_id", identity.ID.String()).
			Msg("duplicate review rejected")
		return nil, model.ErrDuplicateReview
	}

	rv := &model.Review{
		ID:        uuid.New(),
		ProductID: productID,
		UserID:    identity.ID,
		Name:      identity.Name,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	summary, err := s.productRepo.AddReview(ctx, rv)
	if err != nil {
		var domainErr *model.DomainError
		if errors.As(err, &domainErr) {
			s.logger.Warn().Err(err).
				Str("product_id", productID.String()).
				Str("user_id", identity.ID.String()).
				Msg("review rejected")
			return nil, err
		}
		return nil, fmt.Errorf("failed to add review: %w", err)
	}

	s.logger.Info().
		Str("product_id", productID.String()).
		Str("user_id", identity.ID.String()).
		Float64("rating", summary.Rating).
		Int("num_reviews", summary.NumReviews).
		Msg("review added")

	return rv, nil
}
