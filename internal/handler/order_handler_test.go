package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderService is a mock implementation of OrderService.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Create(ctx context.Context, identity *model.Identity, req *model.OrderRequest) (*model.Order, error) {
	args := m.Called(ctx, identity, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) List(ctx context.Context) ([]model.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) ListMine(ctx context.Context, identity *model.Identity) ([]model.Order, error) {
	args := m.Called(ctx, identity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Order), args.Error(1)
}

func (m *MockOrderService) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Pay(ctx context.Context, id uuid.UUID, result *model.PaymentResult) (*model.Order, error) {
	args := m.Called(ctx, id, result)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Deliver(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Order), args.Error(1)
}

func (m *MockOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestOrderHandler_Create(t *testing.T) {
	user := &model.Identity{ID: uuid.New(), Name: "Jane"}
	productID := uuid.New()

	validBody := `{
		"orderItems": [{"product": "` + productID.String() + `", "qty": 2}],
		"shippingAddress": {"address": "1 Main St", "city": "Springfield", "postalCode": "12345", "country": "US"},
		"paymentMethod": "PayPal"
	}`

	tests := []struct {
		name           string
		body           string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
		wantField      string
	}{
		{
			name: "success",
			body: validBody,
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, user, mock.MatchedBy(func(r *model.OrderRequest) bool {
					return len(r.Items) == 1 && r.Items[0].ProductID == productID && r.Items[0].Quantity == 2
				})).Return(&model.Order{ID: uuid.New(), UserID: user.ID, TotalPrice: 56}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid JSON",
			body:           `{invalid json}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidationFailed,
		},
		{
			name:           "empty items",
			body:           `{"orderItems": [], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "paymentMethod": "PayPal"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidationFailed,
			wantField:      "orderItems",
		},
		{
			name:           "zero quantity",
			body:           `{"orderItems": [{"product": "` + productID.String() + `", "qty": 0}], "shippingAddress": {"address": "a", "city": "b", "postalCode": "c", "country": "d"}, "paymentMethod": "PayPal"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidationFailed,
			wantField:      "orderItems[0].qty",
		},
		{
			name:           "missing city",
			body:           `{"orderItems": [{"product": "` + productID.String() + `", "qty": 1}], "shippingAddress": {"address": "a", "postalCode": "c", "country": "d"}, "paymentMethod": "PayPal"}`,
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeValidationFailed,
			wantField:      "shippingAddress.city",
		},
		{
			name: "unknown product",
			body: validBody,
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, user, mock.Anything).Return(nil, model.ErrNotFound.WithMessage("Product not found"))
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
		{
			name: "service failure",
			body: validBody,
			setupMock: func(m *MockOrderService) {
				m.On("Create", mock.Anything, user, mock.Anything).Return(nil, errors.New("failed to create order: tx aborted"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   model.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)
			h := NewOrderHandler(mockService, zerolog.Nop())

			req := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(tt.body)), user)
			w := httptest.NewRecorder()
			h.Create(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				resp := decodeError(t, w.Body)
				assert.Equal(t, tt.expectedCode, resp.Error)
				if tt.wantField != "" {
					assert.Contains(t, resp.Fields, tt.wantField)
				}
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetByID(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name           string
		param          string
		setupMock      func(m *MockOrderService)
		expectedStatus int
		expectedCode   string
	}{
		{
			name:  "found",
			param: orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID).Return(&model.Order{ID: orderID, Items: []model.OrderItem{}}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid id",
			param:          "invalid-uuid",
			setupMock:      func(m *MockOrderService) {},
			expectedStatus: http.StatusBadRequest,
			expectedCode:   model.ErrCodeInvalidID,
		},
		{
			name:  "not found",
			param: orderID.String(),
			setupMock: func(m *MockOrderService) {
				m.On("GetByID", mock.Anything, orderID).Return(nil, model.ErrOrderNotFound)
			},
			expectedStatus: http.StatusNotFound,
			expectedCode:   model.ErrCodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockOrderService)
			tt.setupMock(mockService)
			h := NewOrderHandler(mockService, zerolog.Nop())

			req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+tt.param, nil), "id", tt.param)
			w := httptest.NewRecorder()
			h.GetByID(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedCode != "" {
				assert.Equal(t, tt.expectedCode, decodeError(t, w.Body).Error)
			} else {
				var order model.Order
				require.NoError(t, json.NewDecoder(w.Body).Decode(&order))
				assert.Equal(t, orderID, order.ID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_ListMine(t *testing.T) {
	user := &model.Identity{ID: uuid.New()}
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("ListMine", mock.Anything, user).Return([]model.Order{{ID: uuid.New(), UserID: user.ID}}, nil)

	w := httptest.NewRecorder()
	h.ListMine(w, withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/orders/mine", nil), user))

	assert.Equal(t, http.StatusOK, w.Code)
	var orders []model.Order
	require.NoError(t, json.NewDecoder(w.Body).Decode(&orders))
	assert.Len(t, orders, 1)
}

func TestOrderHandler_List(t *testing.T) {
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("List", mock.Anything).Return([]model.Order{}, nil)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestOrderHandler_Pay(t *testing.T) {
	orderID := uuid.New()

	t.Run("stores payment result", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, zerolog.Nop())
		mockService.On("Pay", mock.Anything, orderID, &model.PaymentResult{
			ID: "PAY-1", Status: "COMPLETED", UpdateTime: "2024-06-02T08:00:00Z", EmailAddress: "buyer@example.com",
		}).Return(&model.Order{ID: orderID, IsPaid: true}, nil)

		body := `{"id":"PAY-1","status":"COMPLETED","update_time":"2024-06-02T08:00:00Z","email_address":"buyer@example.com"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)), "id", orderID.String())
		w := httptest.NewRecorder()
		h.Pay(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		mockService := new(MockOrderService)
		h := NewOrderHandler(mockService, zerolog.Nop())

		body := `{"id":"PAY-1","status":"COMPLETED","email_address":"nope"}`
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/", strings.NewReader(body)), "id", orderID.String())
		w := httptest.NewRecorder()
		h.Pay(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decodeError(t, w.Body).Fields, "email_address")
	})
}

func TestOrderHandler_DeliverAndDelete(t *testing.T) {
	orderID := uuid.New()
	mockService := new(MockOrderService)
	h := NewOrderHandler(mockService, zerolog.Nop())
	mockService.On("Deliver", mock.Anything, orderID).Return(&model.Order{ID: orderID, IsDelivered: true}, nil)
	mockService.On("Delete", mock.Anything, orderID).Return(model.ErrOrderNotFound)

	w := httptest.NewRecorder()
	h.Deliver(w, withURLParam(httptest.NewRequest(http.MethodPut, "/", nil), "id", orderID.String()))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	h.Delete(w, withURLParam(httptest.NewRequest(http.MethodDelete, "/", nil), "id", orderID.String()))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
