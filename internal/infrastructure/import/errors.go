package csvimport

import (
	"errors"
	"fmt"
	"strings"
)

// Row error codes
const (
	ErrCodeRequired      = "REQUIRED"
	ErrCodeInvalidFormat = "INVALID_FORMAT"
	ErrCodeInvalidLength = "INVALID_LENGTH"
	ErrCodeInvalidRange  = "INVALID_RANGE"
	ErrCodeDuplicate     = "DUPLICATE"
	ErrCodeValidation    = "VALIDATION"
	ErrCodeMalformedRow  = "MALFORMED_ROW"
)

// Common import errors
var (
	// ErrEmptyFile is returned when the CSV file is empty
	ErrEmptyFile = errors.New("CSV file is empty")

	// ErrInvalidEncoding is returned when the file is not valid UTF-8
	ErrInvalidEncoding = errors.New("invalid file encoding, expected UTF-8")

	// ErrMissingHeader is returned when the CSV file has no header row
	ErrMissingHeader = errors.New("CSV file missing header row")

	// ErrNoDataRows is returned when the CSV file has no data rows
	ErrNoDataRows = errors.New("CSV file contains no data rows")
)

// MissingColumnsError lists required columns absent from the header
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// RowError is an error tied to a line of the file. The header is row 1.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error renders the row error the way it is reported to users, e.g. "Fila 3: RUC: ..."
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("Fila %d: %s: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("Fila %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// ErrorCollection keeps at most maxErrors row errors while counting all of them
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates a new ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{maxErrors: maxErrors}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// Addf adds a formatted error without a column
func (ec *ErrorCollection) Addf(row int, code, format string, args ...any) {
	ec.Add(NewRowError(row, "", code, fmt.Sprintf(format, args...)))
}

// Errors returns the retained errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// TotalCount returns how many errors were added, including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors reports whether any error was added
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated reports whether errors were dropped past the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > len(ec.errors)
}

// Messages renders every retained error
func (ec *ErrorCollection) Messages() []string {
	out := make([]string, len(ec.errors))
	for i, e := range ec.errors {
		out[i] = e.Error()
	}
	return out
}
