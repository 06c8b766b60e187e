package remote

import (
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
)

// Category classifies a remote failure
type Category string

const (
	// CategoryTransient covers timeouts, throttling and server-side faults
	CategoryTransient Category = "transient"
	// CategoryPermanent covers requests the remote will never accept
	CategoryPermanent Category = "permanent"
	// CategoryNotFound indicates the entity does not exist
	CategoryNotFound Category = "not_found"
	// CategoryUnauthorized indicates missing or revoked access
	CategoryUnauthorized Category = "unauthorized"
)

// Sentinels matched with errors.Is against any *Error of the same category
var (
	ErrTransient    = errors.New("transient remote error")
	ErrPermanent    = errors.New("permanent remote error")
	ErrNotFound     = errors.New("remote entity not found")
	ErrUnauthorized = errors.New("remote access unauthorized")
)

// Error is a categorized remote failure
type Error struct {
	Category Category
	Err      error
}

// NewError creates a categorized remote error
func NewError(category Category, err error) *Error {
	return &Error{Category: category, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Category, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel for the error's category
func (e *Error) Is(target error) bool {
	switch target {
	case ErrTransient:
		return e.Category == CategoryTransient
	case ErrPermanent:
		return e.Category == CategoryPermanent
	case ErrNotFound:
		return e.Category == CategoryNotFound
	case ErrUnauthorized:
		return e.Category == CategoryUnauthorized
	}
	return false
}

// Classify maps err onto a categorized *Error. Errors that are already
// categorized are returned unchanged.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var re *Error
	if errors.As(err, &re) {
		return re
	}

	return NewError(CategorizeError(err), err)
}

// CategorizeError returns the category for err
func CategorizeError(err error) Category {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return categorizeStatus(apiErr.Code)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) && retrieveErr.Response != nil && retrieveErr.Response.StatusCode < 500 {
		// Token refresh rejected: the grant was revoked or expired
		return CategoryUnauthorized
	}

	// Timeouts, cancellations and transport faults without a status
	return CategoryTransient
}

func categorizeStatus(code int) Category {
	switch {
	case code == 401, code == 403:
		return CategoryUnauthorized
	case code == 404:
		return CategoryNotFound
	case code == 408, code == 429, code >= 500:
		return CategoryTransient
	default:
		return CategoryPermanent
	}
}
