package model

import "fmt"

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	CorrelationID string `json:"correlationId,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON      = "INVALID_JSON"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeInvalidProductID = "INVALID_PRODUCT_ID"
	ErrCodeProductNotFound  = "PRODUCT_NOT_FOUND"
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

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidJSON      = NewDomainError(ErrCodeInvalidJSON, "Request body is not valid JSON")
	ErrInvalidProductID = NewDomainError(ErrCodeInvalidProductID, "Product ID must be a valid UUID")
	ErrProductNotFound  = NewDomainError(ErrCodeProductNotFound, "Product not found")
)

// ValidationError reports a product field that is missing or of the wrong type.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Code returns the API error code for validation failures.
func (e *ValidationError) Code() string {
	return ErrCodeValidation
}

// NewValidationError creates a validation error for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
