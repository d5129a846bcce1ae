package services

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedRange is wrapped by MalformedRangeError
	ErrMalformedRange = errors.New("malformed page range")

	// ErrNoTablesFound is returned by the table engine when no page yields a grid
	ErrNoTablesFound = errors.New("no tables found in the selected pages")

	// ErrEmptyDocument is returned when the upload carries no bytes
	ErrEmptyDocument = errors.New("empty PDF content")

	// ErrTooManyPages is returned when a document has more pages than MAX_PAGES
	ErrTooManyPages = errors.New("document exceeds the page limit")
)

// MalformedRangeError reports a "-" page range whose bounds are not integers
type MalformedRangeError struct {
	Spec string
	Err  error
}

func (e *MalformedRangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid page range %q: %v", e.Spec, e.Err)
	}
	return fmt.Sprintf("invalid page range %q", e.Spec)
}

func (e *MalformedRangeError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedRange}
	}
	return []error{ErrMalformedRange, e.Err}
}

// UnsupportedEngineError is a client input error for an unknown engine name
type UnsupportedEngineError struct {
	Value string
}

func (e *UnsupportedEngineError) Error() string {
	return fmt.Sprintf("Unsupported engine %q. Use %q or %q.", e.Value, EngineText, EngineTable)
}

// UnsupportedStrategyError is a client input error for an unknown merge strategy
type UnsupportedStrategyError struct {
	Value string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("Unsupported merge strategy %q. Use %q or %q.", e.Value, StrategyTemplate, StrategyKeyword)
}

// IsClientInputError reports whether err should be answered with a 400
func IsClientInputError(err error) bool {
	var engineErr *UnsupportedEngineError
	var strategyErr *UnsupportedStrategyError
	return errors.As(err, &engineErr) || errors.As(err, &strategyErr)
}
