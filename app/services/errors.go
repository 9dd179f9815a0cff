package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("authentication credentials were not provided or are invalid")
	ErrInvalidLogin      = errors.New("invalid email or password")
	ErrAccountDisabled   = errors.New("user account is disabled")
	ErrForbidden         = errors.New("you do not have permission to perform this action")
	ErrInsufficientStock = errors.New("insufficient product stock")
	ErrConflict          = errors.New("conflict")
	ErrValidation        = errors.New("validation failed")
)

// ValidationError carries one message per offending input field.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + joinFields(e.Fields)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ConflictError reports unique-constraint violations per field.
type ConflictError struct {
	Fields map[string]string
}

func NewConflictError(field, message string) *ConflictError {
	return &ConflictError{Fields: map[string]string{field: message}}
}

func (e *ConflictError) Error() string {
	return "conflict: " + joinFields(e.Fields)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return e.Resource + " not found"
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

type InsufficientStockError struct {
	ProductID uint64
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: %d available, %d requested", e.Product, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

const (
	LineErrProductNotFound   = "product_not_found"
	LineErrInsufficientStock = "insufficient_stock"
	LineErrInvalid           = "invalid"
)

// LineItemError describes why one order line was rejected.
type LineItemError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Available *int   `json:"available,omitempty"`
}

// LineItemErrors maps the index of each rejected line to its error.
type LineItemErrors map[int]LineItemError

func (e LineItemErrors) Error() string {
	idx := make([]int, 0, len(e))
	for i := range e {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		parts = append(parts, fmt.Sprintf("items[%d]: %s", i, e[i].Message))
	}
	return "invalid order items: " + strings.Join(parts, "; ")
}

func (e LineItemErrors) Is(target error) bool { return target == ErrValidation }

type PaymentErrorKind string

const (
	PaymentErrConfig    PaymentErrorKind = "config"
	PaymentErrAuth      PaymentErrorKind = "auth"
	PaymentErrProcessor PaymentErrorKind = "processor"
)

type PaymentError struct {
	Kind    PaymentErrorKind
	Message string
	Err     error
}

func (e *PaymentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("payment %s error: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("payment %s error: %s", e.Kind, e.Message)
}

func (e *PaymentError) Unwrap() error { return e.Err }

func joinFields(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fields[k])
	}
	return strings.Join(parts, ", ")
}
