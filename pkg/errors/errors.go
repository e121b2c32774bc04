package errors

import (
	"fmt"
)

// ErrNotFound is returned when a resource is not found
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when authentication fails
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrValidation is returned when validation fails
type ErrValidation struct {
	Message string
	Fields  map[string]string
}

func (e *ErrValidation) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "validation failed"
}

// ErrConflict is returned when a resource already exists and must not be replaced
type ErrConflict struct {
	Resource string
	ID       string
}

func (e *ErrConflict) Error() string {
	return fmt.Sprintf("%s already exists: %s", e.Resource, e.ID)
}

// ErrInvalidInput is returned when an export is called without a usable order collection.
// No row work is done.
type ErrInvalidInput struct {
	Message string
}

func (e *ErrInvalidInput) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "no orders to export"
}

// ErrEmptyResult is returned when every order was skipped and the export has no rows.
type ErrEmptyResult struct {
	OrderCount int
}

func (e *ErrEmptyResult) Error() string {
	return fmt.Sprintf("no rows generated for CSV (%d orders, none with line items)", e.OrderCount)
}

// ErrDownstreamTagging wraps a failure to tag an exported order in Shopify.
// It is logged per order and never fails the export.
type ErrDownstreamTagging struct {
	OrderID string
	Err     error
}

func (e *ErrDownstreamTagging) Error() string {
	return fmt.Sprintf("tag order %s: %v", e.OrderID, e.Err)
}

func (e *ErrDownstreamTagging) Unwrap() error {
	return e.Err
}
