package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"storefront/internal/model"
	"storefront/internal/service"
	"storefront/internal/storage"

	"github.com/rs/zerolog"
)

// multipartOverhead is the allowance for form fields on top of the image size.
const multipartOverhead = 1 << 20

// MessageResponse is a plain confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProductCreatedResponse is returned by Create.
type ProductCreatedResponse struct {
	Message        string         `json:"message"`
	CreatedProduct *model.Product `json:"createdProduct"`
}

// ProductUpdatedResponse is returned by Update.
type ProductUpdatedResponse struct {
	Message        string         `json:"message"`
	UpdatedProduct *model.Product `json:"updatedProduct"`
}

// ProductHandler handles product-related HTTP requests.
type ProductHandler struct {
	service        service.ProductService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewProductHandler creates a new product handler. maxUploadBytes bounds the
// size of an uploaded image.
func NewProductHandler(service service.ProductService, maxUploadBytes int64, logger zerolog.Logger) *ProductHandler {
	return &ProductHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
		logger:         logger.With().Str("handler", "product").Logger(),
	}
}

// List handles GET /api/v1/products?search=&limit=&skip= requests.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	search := q.Get("search")
	if search == "" {
		search = q.Get("keyword")
	}

	page, err := h.service.List(r.Context(), service.ProductQuery{
		Search: search,
		Limit:  q.Get("limit"),
		Skip:   q.Get("skip"),
	})
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, page, h.logger)
}

// Top handles GET /api/v1/products/top requests.
func (h *ProductHandler) Top(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.Top(r.Context())
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, products, h.logger)
}

// GetByID handles GET /api/v1/products/{id} requests. A malformed id cannot
// name a product and is reported as not found.
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	product, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, product, h.logger)
}

// Create handles multipart POST /api/v1/products requests carrying one
// image file and the product fields.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "upload too large", h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid multipart form", h.logger)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			writeServiceError(w, model.ErrImageRequired, h.logger)
			return
		}
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid image upload", h.logger)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed,
			fmt.Sprintf("image exceeds %d bytes", h.maxUploadBytes), h.logger)
		return
	}
	if _, err := storage.Extension(header.Filename); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed,
			"Images only: jpg, jpeg, png or webp", h.logger)
		return
	}

	req, fieldErrs := productRequestFromForm(r)
	if len(fieldErrs) > 0 {
		h.logger.Warn().Interface("fields", fieldErrs).Msg("request validation failed")
		writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
			Error:   model.ErrCodeValidationFailed,
			Message: model.ErrValidationFailed.Message,
			Fields:  fieldErrs,
		}, h.logger)
		return
	}
	if !checkValid(w, req, h.logger) {
		return
	}

	upload := &storage.Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	}

	product, err := h.service.Create(r.Context(), caller, req, upload)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, ProductCreatedResponse{
		Message:        "Product created successfully",
		CreatedProduct: product,
	}, h.logger)
}

// productRequestFromForm reads the text fields of a product form. Numeric
// fields that do not parse are reported per field.
func productRequestFromForm(r *http.Request) (*model.ProductRequest, map[string]string) {
	fieldErrs := map[string]string{}

	req := &model.ProductRequest{
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
		Brand:       strings.TrimSpace(r.FormValue("brand")),
		Category:    strings.TrimSpace(r.FormValue("category")),
	}

	if raw := strings.TrimSpace(r.FormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fieldErrs["price"] = "must be a number"
		}
		req.Price = price
	}

	if raw := strings.TrimSpace(r.FormValue("countInStock")); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			fieldErrs["countInStock"] = "must be an integer"
		}
		req.CountInStock = count
	}

	return req, fieldErrs
}

// Update handles PUT /api/v1/products/{id} requests with a partial JSON body.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	var update model.ProductUpdate
	if !decodeAndValidate(w, r, &update, h.logger) {
		return
	}

	product, err := h.service.Update(r.Context(), id, &update)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, ProductUpdatedResponse{
		Message:        "Product updated successfully",
		UpdatedProduct: product,
	}, h.logger)
}

// Delete handles DELETE /api/v1/products/{id} requests.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Product deleted successfully"}, h.logger)
}

// CreateReview handles POST /api/v1/products/reviews/{id} requests.
func (h *ProductHandler) CreateReview(w http.ResponseWriter, r *http.Request) {
	caller, err := identity(r)
	if err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	id, err := parseID(r, "id")
	if err != nil {
		writeServiceError(w, model.ErrProductNotFound, h.logger)
		return
	}

	var req model.ReviewRequest
	if !decodeAndValidate(w, r, &req, h.logger) {
		return
	}

	if _, err := h.service.CreateReview(r.Context(), caller, id, &req); err != nil {
		writeServiceError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Review added successfully"}, h.logger)
}
