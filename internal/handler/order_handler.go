package handler

import (
	"net/http"

	"storefront/internal/model"
	"storefront/internal/service"

	"github.com/rs/zerolog"
)

// OrderHandler handles order-related HTTP requests.
type OrderHandler struct {
	service service.OrderService
	logger  zerolog.Logger
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(service service.OrderService, logger zerolog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		logger:  logger.With().Str("handler", "order").Logger(),
	}
}

// Create handles POST /api/v1/orders requests.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var req model.OrderRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	order, err := h.service.Create(r.Context(), caller, &req)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, order, h.logger)
}

// List handles GET /api/v1/orders requests.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders, h.logger)
}

// ListMine handles GET /api/v1/orders/mine requests.
func (h *OrderHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	orders, err := h.service.ListMine(r.Context(), caller)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, orders, h.logger)
}

// GetByID handles GET /api/v1/orders/{id} requests.
func (h *OrderHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.GetByID(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order, h.logger)
}

// Pay handles PUT /api/v1/orders/{id}/pay requests.
func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	var result model.PaymentResult
	if !decodeAndValidate(w, r, &result, h.logger) {
		return
	}

	order, err := h.service.Pay(r.Context(), orderID, &result)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order, h.logger)
}

// Deliver handles PUT /api/v1/orders/{id}/deliver requests.
func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	order, err := h.service.Deliver(r.Context(), orderID)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, order, h.logger)
}

// Delete handles DELETE /api/v1/orders/{id} requests.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), orderID); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Order deleted successfully"}, h.logger)
}
