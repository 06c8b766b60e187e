package service

import (
	"fmt"

	"github.com/sinh-x/google-classroom-mcp/internal/models"
)

// FetchError is a hard failure: the remote call failed and no durable copy exists
type FetchError struct {
	Key models.Key
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Key, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
