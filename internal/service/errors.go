package service

import "errors"

// ErrNotFound is returned when a requested resource does not exist or
// is not owned by the requesting user. The HTTP layer maps it to 404.
var ErrNotFound = errors.New("resource not found")
