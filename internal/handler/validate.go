package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"storefront/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError carries per-field messages for a rejected request.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.fields))
	for field, msg := range e.fields {
		msgs = append(msgs, fmt.Sprintf("field '%s' %s", field, msg))
	}
	return strings.Join(msgs, "; ")
}

// validateStruct validates s using go-playground/validator tags.
func validateStruct(s any) error {
	if err := validate.Struct(s); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make(map[string]string, len(validationErrors))
			for _, fe := range validationErrors {
				fields[fieldPath(fe)] = msgForTag(fe)
			}
			return &validationError{fields: fields}
		}
		return err
	}
	return nil
}

// fieldPath strips the root struct name from the namespace, so that nested
// fields read as shippingAddress.city or orderItems[0].qty.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func msgForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.Int || fe.Kind() == reflect.Float64 {
			return fmt.Sprintf("must be at least %s", fe.Param())
		}
		return fmt.Sprintf("must have at least %s element(s) or characters", fe.Param())
	case "max":
		if fe.Kind() == reflect.Int || fe.Kind() == reflect.Float64 {
			return fmt.Sprintf("must be at most %s", fe.Param())
		}
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	default:
		return fmt.Sprintf("failed on '%s' validation", fe.Tag())
	}
}

// decodeAndValidate reads a JSON body into dst and validates it. On failure
// it writes a 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any, logger zerolog.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeValidationFailed, "invalid request body", logger)
		return false
	}
	return checkValid(w, dst, logger)
}

// checkValid validates dst and writes a 400 response with the offending
// fields when it is invalid.
func checkValid(w http.ResponseWriter, dst any, logger zerolog.Logger) bool {
	err := validateStruct(dst)
	if err == nil {
		return true
	}

	var ve *validationError
	if !errors.As(err, &ve) {
		writeServiceError(w, err, logger)
		return false
	}

	logger.Warn().Interface("fields", ve.fields).Msg("request validation failed")
	writeJSON(w, http.StatusBadRequest, model.ErrorResponse{
		Error:   model.ErrCodeValidationFailed,
		Message: model.ErrValidationFailed.Message,
		Fields:  ve.fields,
	}, logger)
	return false
}
