// Package errs provides the structured error type used across the site
// layer and CLI for category-based classification.
//
// The core engine never returns errors for content: malformed markup
// degrades in the output instead. Errors here describe everything around
// the engine (configuration, sources, storage, the build itself).
package errs

import "fmt"

// Category classifies an error for exit codes and log fields.
type Category string

const (
	CategoryConfig  Category = "config"  // bad flags, bad config file, bad plugin set
	CategoryContent Category = "content" // unreadable or undecodable source documents
	CategoryBuild   Category = "build"   // render/write failures during a build
	CategoryStorage Category = "storage" // cache and event persistence
	CategoryIO      Category = "io"      // filesystem and network access
)

// Error is a categorized error with an optional cause.
type Error struct {
	Category  Category
	Message   string
	Cause     error
	Retryable bool
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New creates a categorized error.
func New(cat Category, message string) *Error {
	return &Error{Category: cat, Message: message}
}

// Newf creates a categorized error with a formatted message.
func Newf(cat Category, format string, args ...any) *Error {
	return &Error{Category: cat, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a category and message to an existing error.
func Wrap(err error, cat Category, message string) *Error {
	return &Error{Category: cat, Message: message, Cause: err}
}

// WrapRetryable marks the wrapped error as safe to retry (transient
// network or storage conditions).
func WrapRetryable(err error, cat Category, message string) *Error {
	return &Error{Category: cat, Message: message, Cause: err, Retryable: true}
}

// CategoryOf extracts the category, defaulting to CategoryBuild for
// plain errors.
func CategoryOf(err error) Category {
	if e, ok := err.(*Error); ok {
		return e.Category
	}
	return CategoryBuild
}

// IsRetryable reports whether the error was marked retryable.
func IsRetryable(err error) bool {
	e, ok := err.(*Error)
	return ok && e.Retryable
}
