package services

import "errors"

// ErrInvalidInput marks request values the service rejects; handlers map it
// to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrNotFound is returned for collection entries and watches that do not
// exist or belong to another user.
var ErrNotFound = errors.New("not found")
