package service

import "errors"

// Base classes. Handlers map these to transport status codes with errors.Is.
var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
	ErrConflict           = errors.New("conflict")
)

var (
	ErrInvalidInput     = classed(ErrValidation, "invalid input")
	ErrPasswordMismatch = classed(ErrValidation, "passwords do not match")
	ErrTermsNotAccepted = classed(ErrValidation, "terms and conditions must be accepted")

	ErrDuplicateEmail = classed(ErrConflict, "email already registered")
	ErrDuplicateUnit  = classed(ErrConflict, "unit with this name already exists")
)

// Per-file upload rejections. They never fail a whole batch.
var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrStorage             = errors.New("storage error")
)

// classedError is a sentinel that also matches its class through errors.Is.
type classedError struct {
	class error
	msg   string
}

func classed(class error, msg string) error {
	return &classedError{class: class, msg: msg}
}

func (e *classedError) Error() string { return e.msg }
func (e *classedError) Unwrap() error { return e.class }
