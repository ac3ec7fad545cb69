package models

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared by the ledger, alert engine and HTTP layer.
var (
	ErrValidation           = errors.New("validation error")
	ErrNotFound             = errors.New("record not found")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
	ErrTransactionAborted   = errors.New("transaction aborted")
	ErrStoreUnavailable     = errors.New("store unavailable")
)

// FieldError describes a validation failure on one input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field-level problem found in an input.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	fields := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		fields = append(fields, fe.Field)
	}
	return fmt.Sprintf("validation: %d errors (%s)", len(e.Errors), strings.Join(fields, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}
