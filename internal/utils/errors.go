package utils

import (
	"errors"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrSizeExceeded       = errors.New("size limit exceeded")
	ErrFetchFailed        = errors.New("fetch failed")
	ErrNetworkError       = errors.New("network error")
	ErrTimeout            = errors.New("operation timed out")
	ErrEmptyFile          = errors.New("file is empty")
	ErrUploadFailed       = errors.New("upload failed")
	ErrPersistenceFailed  = errors.New("persistence failed")
	ErrCancelled          = errors.New("operation cancelled")
	ErrConfigurationError = errors.New("configuration error")
)

type WrappedError struct {
	Err     error
	Message string
	Context map[string]any
}

func (w *WrappedError) Error() string {
	if w.Message != "" {
		return w.Message + ": " + w.Err.Error()
	}
	return w.Err.Error()
}

func (w *WrappedError) Unwrap() error {
	return w.Err
}

func WrapError(err error, message string, ctx map[string]any) error {
	return &WrappedError{
		Err:     err,
		Message: message,
		Context: ctx,
	}
}

// RootError returns the innermost error in the chain (for user-facing messages without wrapper text).
func RootError(err error) error {
	for e := err; e != nil; e = errors.Unwrap(e) {
		err = e
	}
	return err
}

// TransferErrorMessage returns a human-readable message for a failed transfer.
// The sentinel gives the category, the outermost wrapper the detail.
func TransferErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrSizeExceeded):
		return "File is too large: " + err.Error()
	case errors.Is(err, ErrTimeout):
		return "Operation timed out"
	case errors.Is(err, ErrCancelled):
		return "Operation cancelled"
	default:
		return err.Error()
	}
}
