package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderRepository) List(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, result model.PaymentResult, at time.Time) (bool, error) {
	args := m.Called(ctx, id, result, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) MarkDelivered(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

func newOrderRequest(items ...model.OrderItemRequest) *model.OrderRequest {
	return &model.OrderRequest{
		Items: items,
		ShippingAddress: model.ShippingAddress{
			Address: "1 Main St", City: "Springfield", PostalCode: "12345", Country: "US",
		},
		PaymentMethod: "PayPal",
	}
}

func TestCalculatePrices(t *testing.T) {
	tests := []struct {
		name  string
		items []model.OrderItem
		want  Prices
	}{
		{
			name:  "below free shipping threshold",
			items: []model.OrderItem{{Price: 10, Quantity: 2}, {Price: 20, Quantity: 1}},
			want:  Prices{Items: 40, Shipping: 10, Tax: 6, Total: 56},
		},
		{
			name:  "exactly at threshold still pays shipping",
			items: []model.OrderItem{{Price: 100, Quantity: 1}},
			want:  Prices{Items: 100, Shipping: 10, Tax: 15, Total: 125},
		},
		{
			name:  "above threshold ships free",
			items: []model.OrderItem{{Price: 89.99, Quantity: 2}},
			want:  Prices{Items: 179.98, Shipping: 0, Tax: 27, Total: 206.98},
		},
		{
			name:  "rounds to cents",
			items: []model.OrderItem{{Price: 1.1, Quantity: 2}},
			want:  Prices{Items: 2.2, Shipping: 10, Tax: 0.33, Total: 12.53},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrices(tt.items)
			assert.InDelta(t, tt.want.Items, got.Items, 1e-9)
			assert.InDelta(t, tt.want.Shipping, got.Shipping, 1e-9)
			assert.InDelta(t, tt.want.Tax, got.Tax, 1e-9)
			assert.InDelta(t, tt.want.Total, got.Total, 1e-9)
		})
	}
}

func TestOrderService_Create_Success(t *testing.T) {
	ctx := context.Background()
	user := &model.Identity{ID: uuid.New(), Name: "Jane"}

	p1 := model.Product{ID: uuid.New(), Name: "Product 1", Price: 10.00, Image: "/uploads/p1.png"}
	p2 := model.Product{ID: uuid.New(), Name: "Product 2", Price: 20.00, Image: "/uploads/p2.png"}
	req := newOrderRequest(
		model.OrderItemRequest{ProductID: p1.ID, Quantity: 2},
		model.OrderItemRequest{ProductID: p2.ID, Quantity: 1},
	)

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)

	service := NewOrderService(mockOrderRepo, mockProductRepo, zerolog.Nop())

	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{p1.ID, p2.ID}).Return([]model.Product{p1, p2}, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.MatchedBy(func(o *model.Order) bool {
		return o.UserID == user.ID && o.ItemsPrice == 40 && o.ShippingPrice == 10 &&
			o.TaxPrice == 6 && o.TotalPrice == 56 && !o.IsPaid
	})).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := service.Create(ctx, user, req)
	require.NoError(t, err)
	require.Len(t, order.Items, 2)
	assert.Equal(t, "Product 1", order.Items[0].Name)
	assert.Equal(t, 10.00, order.Items[0].Price)
	assert.Equal(t, "/uploads/p2.png", order.Items[1].Image)
	assert.Equal(t, order.ID, order.Items[1].OrderID)
	assert.Equal(t, "Springfield", order.ShippingAddress.City)

	assert.True(t, mockTx.committed)
	assert.False(t, mockTx.rolledBack)
	mockOrderRepo.AssertExpectations(t)
	mockProductRepo.AssertExpectations(t)
	mockTx.AssertExpectations(t)
}

func TestOrderService_Create_DuplicateProductLookedUpOnce(t *testing.T) {
	ctx := context.Background()
	p := model.Product{ID: uuid.New(), Name: "Mouse", Price: 60}
	req := newOrderRequest(
		model.OrderItemRequest{ProductID: p.ID, Quantity: 1},
		model.OrderItemRequest{ProductID: p.ID, Quantity: 1},
	)

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)
	service := NewOrderService(mockOrderRepo, mockProductRepo, zerolog.Nop())

	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{p.ID}).Return([]model.Product{p}, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.MatchedBy(func(o *model.Order) bool {
		return o.ItemsPrice == 120 && o.ShippingPrice == 0
	})).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(nil)
	mockTx.On("Commit", ctx).Return(nil)

	order, err := service.Create(ctx, &model.Identity{ID: uuid.New()}, req)
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)
	mockProductRepo.AssertExpectations(t)
}

func TestOrderService_Create_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	missing := uuid.New()
	req := newOrderRequest(model.OrderItemRequest{ProductID: missing, Quantity: 1})

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	service := NewOrderService(mockOrderRepo, mockProductRepo, zerolog.Nop())

	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{missing}).Return([]model.Product{}, nil)

	order, err := service.Create(ctx, &model.Identity{ID: uuid.New()}, req)
	assert.Nil(t, order)
	assert.ErrorIs(t, err, model.ErrNotFound)
	mockOrderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_Create_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		req  *model.OrderRequest
	}{
		{name: "nil request", req: nil},
		{name: "no items", req: newOrderRequest()},
		{name: "nil product", req: newOrderRequest(model.OrderItemRequest{Quantity: 1})},
		{name: "zero quantity", req: newOrderRequest(model.OrderItemRequest{ProductID: uuid.New(), Quantity: 0})},
		{name: "negative quantity", req: newOrderRequest(model.OrderItemRequest{ProductID: uuid.New(), Quantity: -1})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockProductRepo := new(MockProductRepository)
			service := NewOrderService(new(MockOrderRepository), mockProductRepo, zerolog.Nop())

			_, err := service.Create(context.Background(), &model.Identity{ID: uuid.New()}, tt.req)
			assert.ErrorIs(t, err, model.ErrValidationFailed)
			mockProductRepo.AssertNotCalled(t, "GetByIDs", mock.Anything, mock.Anything)
		})
	}
}

func TestOrderService_Create_TransactionRollback(t *testing.T) {
	ctx := context.Background()
	p := model.Product{ID: uuid.New(), Name: "Cable", Price: 5}
	req := newOrderRequest(model.OrderItemRequest{ProductID: p.ID, Quantity: 1})

	mockOrderRepo := new(MockOrderRepository)
	mockProductRepo := new(MockProductRepository)
	mockTx := new(MockTx)
	service := NewOrderService(mockOrderRepo, mockProductRepo, zerolog.Nop())

	mockProductRepo.On("GetByIDs", ctx, []uuid.UUID{p.ID}).Return([]model.Product{p}, nil)
	mockOrderRepo.On("BeginTx", ctx).Return(mockTx, nil)
	mockOrderRepo.On("CreateOrder", ctx, mockTx, mock.Anything).Return(nil)
	mockOrderRepo.On("CreateOrderItems", ctx, mockTx, mock.Anything).Return(errors.New("database error"))
	mockTx.On("Rollback", ctx).Return(nil)

	order, err := service.Create(ctx, &model.Identity{ID: uuid.New()}, req)
	assert.Nil(t, order)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create order items")
	assert.True(t, mockTx.rolledBack)
	assert.False(t, mockTx.committed)
	mockTx.AssertExpectations(t)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	t.Run("found", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())
		mockOrderRepo.On("GetByID", ctx, orderID).Return(&model.Order{ID: orderID}, nil)

		order, err := service.GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.Equal(t, orderID, order.ID)
	})

	t.Run("not found", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())
		mockOrderRepo.On("GetByID", ctx, orderID).Return(nil, nil)

		order, err := service.GetByID(ctx, orderID)
		assert.Nil(t, order)
		assert.ErrorIs(t, err, model.ErrNotFound)
		assert.Equal(t, "Order not found", err.Error())
	})
}

func TestOrderService_ListMine(t *testing.T) {
	ctx := context.Background()
	user := &model.Identity{ID: uuid.New()}
	mockOrderRepo := new(MockOrderRepository)
	service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())

	mine := []model.Order{{ID: uuid.New(), UserID: user.ID}}
	mockOrderRepo.On("ListByUser", ctx, user.ID).Return(mine, nil)

	got, err := service.ListMine(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, mine, got)
	mockOrderRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestOrderService_Pay(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	result := &model.PaymentResult{ID: "PAY-1", Status: "COMPLETED"}

	t.Run("marks paid and reloads", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())
		mockOrderRepo.On("MarkPaid", ctx, orderID, *result, mock.AnythingOfType("time.Time")).Return(true, nil)
		mockOrderRepo.On("GetByID", ctx, orderID).Return(&model.Order{ID: orderID, IsPaid: true, PaymentResult: result}, nil)

		order, err := service.Pay(ctx, orderID, result)
		require.NoError(t, err)
		assert.True(t, order.IsPaid)
		mockOrderRepo.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		mockOrderRepo := new(MockOrderRepository)
		service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())
		mockOrderRepo.On("MarkPaid", ctx, orderID, *result, mock.Anything).Return(false, nil)

		_, err := service.Pay(ctx, orderID, result)
		assert.ErrorIs(t, err, model.ErrNotFound)
		mockOrderRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
	})
}

func TestOrderService_Deliver(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()
	mockOrderRepo := new(MockOrderRepository)
	service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())

	mockOrderRepo.On("MarkDelivered", ctx, orderID, mock.AnythingOfType("time.Time")).Return(true, nil)
	mockOrderRepo.On("GetByID", ctx, orderID).Return(&model.Order{ID: orderID, IsDelivered: true}, nil)

	order, err := service.Deliver(ctx, orderID)
	require.NoError(t, err)
	assert.True(t, order.IsDelivered)
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	orderID := uuid.New()

	mockOrderRepo := new(MockOrderRepository)
	service := NewOrderService(mockOrderRepo, new(MockProductRepository), zerolog.Nop())
	mockOrderRepo.On("Delete", ctx, orderID).Return(true, nil).Once()
	mockOrderRepo.On("Delete", ctx, orderID).Return(false, nil).Once()

	require.NoError(t, service.Delete(ctx, orderID))
	assert.ErrorIs(t, service.Delete(ctx, orderID), model.ErrNotFound)
}
