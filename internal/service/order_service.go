package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	freeShippingThreshold = 100.0
	flatShippingPrice     = 10.0
	taxRate               = 0.15
)

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		logger:      logger.With().Str("service", "order").Logger(),
	}
}

// Prices is the price breakdown of an order.
type Prices struct {
	Items    float64
	Shipping float64
	Tax      float64
	Total    float64
}

// CalculatePrices prices a set of line items. Shipping is free above the
// threshold and every amount is rounded to cents.
func CalculatePrices(items []model.OrderItem) Prices {
	var itemsPrice float64
	for _, item := range items {
		itemsPrice += item.Price * float64(item.Quantity)
	}
	itemsPrice = roundCents(itemsPrice)

	shipping := flatShippingPrice
	if itemsPrice > freeShippingThreshold {
		shipping = 0
	}
	tax := roundCents(itemsPrice * taxRate)

	return Prices{
		Items:    itemsPrice,
		Shipping: shipping,
		Tax:      tax,
		Total:    roundCents(itemsPrice + shipping + tax),
	}
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// Create prices the order from the stored products and writes it with its
// items in one transaction.
func (s *orderService) Create(ctx context.Context, identity *model.Identity, req *model.OrderRequest) (*model.Order, error) {
	if err := s.validateOrderRequest(req); err != nil {
		return nil, err
	}

	productIDs := make([]uuid.UUID, 0, len(req.Items))
	seen := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, item := range req.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		productIDs = append(productIDs, item.ProductID)
	}

	products, err := s.productRepo.GetByIDs(ctx, productIDs)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to retrieve product details")
		return nil, fmt.Errorf("failed to retrieve product details: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	now := time.Now().UTC()
	order := &model.Order{
		ID:              uuid.New(),
		UserID:          identity.ID,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	orderItems := make([]model.OrderItem, len(req.Items))
	for i, item := range req.Items {
		product, ok := byID[item.ProductID]
		if !ok {
			s.logger.Warn().
				Str("product_id", item.ProductID.String()).
				Msg("order references unknown product")
			return nil, model.ErrNotFound.WithMessage(fmt.Sprintf("Product %s not found", item.ProductID))
		}
		orderItems[i] = model.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: product.ID,
			Name:      product.Name,
			Quantity:  item.Quantity,
			Price:     product.Price,
			Image:     product.Image,
		}
	}

	prices := CalculatePrices(orderItems)
	order.ItemsPrice = prices.Items
	order.ShippingPrice = prices.Shipping
	order.TaxPrice = prices.Tax
	order.TotalPrice = prices.Total

	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, orderItems); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(orderItems)).
			Msg("failed to create order items")
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	order.Items = orderItems

	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("user_id", identity.ID.String()).
		Int("item_count", len(orderItems)).
		Float64("total_price", order.TotalPrice).
		Msg("order created successfully")

	return order, nil
}

// List retrieves every order.
func (s *orderService) List(ctx context.Context) ([]model.Order, error) {
	orders, err := s.orderRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// ListMine retrieves the caller's orders.
func (s *orderService) ListMine(ctx context.Context, identity *model.Identity) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, identity.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves an order by its ID with all items.
func (s *orderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil {
		s.logger.Debug().Str("order_id", id.String()).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// Pay records the payment result and returns the updated order.
func (s *orderService) Pay(ctx context.Context, id uuid.UUID, result *model.PaymentResult) (*model.Order, error) {
	found, err := s.orderRepo.MarkPaid(ctx, id, *result, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to pay order: %w", err)
	}
	if !found {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().
		Str("order_id", id.String()).
		Str("payment_id", result.ID).
		Str("payment_status", result.Status).
		Msg("order paid")

	return s.GetByID(ctx, id)
}

// Deliver marks the order delivered and returns it.
func (s *orderService) Deliver(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	found, err := s.orderRepo.MarkDelivered(ctx, id, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to deliver order: %w", err)
	}
	if !found {
		return nil, model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order delivered")

	return s.GetByID(ctx, id)
}

// Delete removes an order unconditionally.
func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	found, err := s.orderRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if !found {
		return model.ErrOrderNotFound
	}

	s.logger.Info().Str("order_id", id.String()).Msg("order deleted")

	return nil
}

// validateOrderRequest validates the order request.
func (s *orderService) validateOrderRequest(req *model.OrderRequest) error {
	if req == nil {
		return model.ErrValidationFailed.WithMessage("order request is nil")
	}

	if len(req.Items) == 0 {
		return model.ErrValidationFailed.WithMessage("No order items")
	}

	for i, item := range req.Items {
		if item.ProductID == uuid.Nil {
			return model.ErrValidationFailed.WithMessage(fmt.Sprintf("item %d: product ID is required", i))
		}

		if item.Quantity <= 0 {
			s.logger.Warn().
				Int("item_index", i).
				Str("product_id", item.ProductID.String()).
				Int("quantity", item.Quantity).
				Msg("invalid quantity")
			return model.ErrValidationFailed.WithMessage(fmt.Sprintf("item %d: quantity must be positive", i))
		}
	}

	return nil
}
