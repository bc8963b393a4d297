package annotations

import (
	"fmt"
	"sort"
	"strings"
)

// AnnotationError defines the interface for annotation-related errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
	RegistrationErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	case RegistrationErrorCode:
		return "RegistrationError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string         // Parameter name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: parameter '%s' validation failed: expected %s, got %s. %s",
		e.Loc, e.Parameter, e.Expected, e.Actual, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: syntax error: %s. %s", e.Loc, e.Msg, e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a schema-related error
type SchemaError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema error: %s. %s", e.Loc, e.Msg, e.Hint)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// RegistrationError represents an error during annotation kind registration
type RegistrationError struct {
	Msg  string // Error message
	Hint string // Suggested fix
}

func (e *RegistrationError) Error() string {
	if e.Hint == "" {
		return fmt.Sprintf("registration error: %s", e.Msg)
	}
	return fmt.Sprintf("registration error: %s. %s", e.Msg, e.Hint)
}

func (e *RegistrationError) Location() SourceLocation { return SourceLocation{} }
func (e *RegistrationError) Suggestion() string       { return e.Hint }
func (e *RegistrationError) Code() ErrorCode          { return RegistrationErrorCode }

// MultipleValidationErrors collects every parameter problem of one annotation
type MultipleValidationErrors struct {
	Errors []error
}

func (e *MultipleValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple validation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

func (e *MultipleValidationErrors) Unwrap() []error {
	return e.Errors
}

// newUnknownKindError builds the schema error for an unregistered kind,
// listing the kinds that are available.
func newUnknownKindError(name string, loc SourceLocation, available []string) *SchemaError {
	hint := "Declare the kind in registrar.yaml"
	if len(available) > 0 {
		hint = fmt.Sprintf("Known kinds: %s", strings.Join(available, ", "))
	}
	return &SchemaError{
		Msg:  fmt.Sprintf("unknown annotation kind '%s'", name),
		Loc:  loc,
		Hint: hint,
	}
}

func sortStrings(values []string) {
	sort.Strings(values)
}
