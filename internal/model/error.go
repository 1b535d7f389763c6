package model

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeInvalidID        = "INVALID_ID"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeImageRequired    = "IMAGE_REQUIRED"
	ErrCodeDuplicateReview  = "DUPLICATE_REVIEW"
	ErrCodeUnauthenticated  = "UNAUTHENTICATED"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeTokenExpired     = "TOKEN_EXPIRED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeNotAdmin         = "NOT_ADMIN"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so that errors created
// with WithMessage still match the sentinel they were derived from.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithMessage returns a copy of the error with a more specific message.
func (e *DomainError) WithMessage(message string) *DomainError {
	return &DomainError{Code: e.Code, Message: message}
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound         = NewDomainError(ErrCodeNotFound, "Resource not found")
	ErrInvalidID        = NewDomainError(ErrCodeInvalidID, "Invalid ID format")
	ErrValidationFailed = NewDomainError(ErrCodeValidationFailed, "Request validation failed")
	ErrImageRequired    = NewDomainError(ErrCodeImageRequired, "Image is required")
	ErrDuplicateReview  = NewDomainError(ErrCodeDuplicateReview, "Product already reviewed")

	ErrUnauthenticated = NewDomainError(ErrCodeUnauthenticated, "Authentication failed: Token not provided")
	ErrInvalidToken    = NewDomainError(ErrCodeInvalidToken, "Authentication failed: Invalid token")
	ErrTokenExpired    = NewDomainError(ErrCodeTokenExpired, "Authentication failed: Token expired")
	ErrUserNotFound    = NewDomainError(ErrCodeUserNotFound, "Authentication failed: User not found")
	ErrNotAdmin        = NewDomainError(ErrCodeNotAdmin, "Authorization failed: Not authorized as an admin")

	ErrProductNotFound = ErrNotFound.WithMessage("Product not found")
	ErrOrderNotFound   = ErrNotFound.WithMessage("Order not found")
)
