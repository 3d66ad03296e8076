package models

import "fmt"

// ErrorBadRequest is returned for missing or malformed input such as an absent id.
type ErrorBadRequest struct {
	Message string
}

func (e ErrorBadRequest) Error() string { return e.Message }

// ErrorUnauthorized is returned when an operation requires an authenticated caller.
type ErrorUnauthorized struct {
	Message string
}

func (e ErrorUnauthorized) Error() string { return e.Message }

// ErrorForbidden is returned when the caller is neither the owner nor an admin.
type ErrorForbidden struct {
	Message string
}

func (e ErrorForbidden) Error() string { return e.Message }

type ErrorNotFound struct {
	Resource string
	ID       any
}

func (e ErrorNotFound) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
}

// ErrorValidation rejects a form field that passed binding but is empty once
// normalized. Handlers redisplay the form for it.
type ErrorValidation struct {
	Field   string
	Message string
}

func (e ErrorValidation) Error() string { return e.Message }

type ErrorConflict struct {
	Message string
}

func (e ErrorConflict) Error() string { return e.Message }

type ErrorInternalServer struct {
	Message string
	Err     error
}

func (e ErrorInternalServer) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e ErrorInternalServer) Unwrap() error { return e.Err }
