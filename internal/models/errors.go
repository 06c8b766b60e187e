package models

import "errors"

// ErrInvalidInput marks malformed scope identifiers and tool arguments
var ErrInvalidInput = errors.New("invalid input")
