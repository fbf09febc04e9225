package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for registry-level error handling.
// The handler layer maps these to HTTP status codes.
var (
	ErrDeploymentAlreadyExists = errors.New("deployment_already_exists")
	ErrDeploymentNotFound      = errors.New("deployment_not_found")
)

// ValidationError represents a request validation failure.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ErrorCategory is one of the fixed gateway failure kinds. Each category
// resolves to a stable numeric ID, a display message and an HTTP status.
type ErrorCategory int

const (
	InvalidJSON ErrorCategory = iota + 1
	InvalidEndpointURL
	MicroserviceError
	NoRunningDeployment
)

type categoryInfo struct {
	id         int
	message    string
	httpStatus int
}

// categoryTable is indexed by ErrorCategory. Slot 0 is the zero value and
// never a valid category.
var categoryTable = [...]categoryInfo{
	InvalidJSON:         {id: 101, message: "Invalid JSON", httpStatus: 400},
	InvalidEndpointURL:  {id: 102, message: "Invalid Endpoint URL", httpStatus: 400},
	MicroserviceError:   {id: 103, message: "Microservice error", httpStatus: 400},
	NoRunningDeployment: {id: 104, message: "No Running Deployment", httpStatus: 400},
}

// Categories returns every category in ID order.
func Categories() []ErrorCategory {
	return []ErrorCategory{InvalidJSON, InvalidEndpointURL, MicroserviceError, NoRunningDeployment}
}

// Valid reports whether c is one of the declared categories.
func (c ErrorCategory) Valid() bool {
	return c >= InvalidJSON && c <= NoRunningDeployment
}

func (c ErrorCategory) info() categoryInfo {
	if !c.Valid() {
		return categoryInfo{}
	}
	return categoryTable[c]
}

// ID returns the category's numeric identifier, or 0 for an undeclared value.
func (c ErrorCategory) ID() int { return c.info().id }

// Message returns the category's human-readable message.
func (c ErrorCategory) Message() string { return c.info().message }

// HTTPStatus returns the status code a response for this category carries.
func (c ErrorCategory) HTTPStatus() int { return c.info().httpStatus }

func (c ErrorCategory) String() string {
	if !c.Valid() {
		return fmt.Sprintf("ErrorCategory(%d)", int(c))
	}
	return c.Message()
}

// Error lets a bare category act as a match target for errors.Is.
func (c ErrorCategory) Error() string {
	return c.String()
}

// APIError signals a gateway failure of exactly one category. Info and
// Cause are optional context for the response and for logs.
type APIError struct {
	category ErrorCategory
	Info     string
	Cause    error
}

// NewAPIError creates an APIError carrying the given category.
func NewAPIError(category ErrorCategory) *APIError {
	return &APIError{category: category}
}

// WrapAPIError creates an APIError with detail text and an underlying cause.
func WrapAPIError(category ErrorCategory, info string, cause error) *APIError {
	return &APIError{category: category, Info: info, Cause: cause}
}

// Category returns the carried category.
func (e *APIError) Category() ErrorCategory {
	return e.category
}

// SetCategory replaces the carried category. An APIError belongs to a single
// request; callers sharing one across goroutines must synchronize.
func (e *APIError) SetCategory(category ErrorCategory) {
	e.category = category
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%d: %s", e.category.ID(), e.category.Message())
	if e.Info != "" {
		msg += ": " + e.Info
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Cause }

// Is matches a bare ErrorCategory or another APIError of the same category.
func (e *APIError) Is(target error) bool {
	switch t := target.(type) {
	case ErrorCategory:
		return e.category == t
	case *APIError:
		return t != nil && e.category == t.category
	}
	return false
}
