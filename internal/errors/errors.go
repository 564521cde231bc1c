// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrNoPriceHistory = errors.New("no price history")
	ErrDataNotFound   = errors.New("data not found")
	ErrConfigInvalid  = errors.New("invalid configuration")
	ErrDatabaseError  = errors.New("database error")
)

// SeriesError represents an error loading or parsing a price series.
type SeriesError struct {
	Instrument string
	Path       string
	Err        error
}

func (e *SeriesError) Error() string {
	return fmt.Sprintf("series error [%s] %s: %v", e.Instrument, e.Path, e.Err)
}

func (e *SeriesError) Unwrap() error {
	return e.Err
}

// NewSeriesError creates a new SeriesError.
func NewSeriesError(instrument, path string, err error) *SeriesError {
	return &SeriesError{Instrument: instrument, Path: path, Err: err}
}

// StoreError represents an error from the result store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error [%s]: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, err error) *StoreError {
	return &StoreError{Op: op, Err: err}
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
