// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings themselves.
package repository

import "errors"

// ErrEmailExists is returned when creating or updating a user would
// collide with an existing email address. Handlers should translate
// this into an HTTP 409 response.
var ErrEmailExists = errors.New("email already exists")

// ErrUserNotFound is returned when an operation targets a user id that
// does not exist, such as setting roles for an unknown user. Handlers
// should translate this into an HTTP 404 response.
var ErrUserNotFound = errors.New("user not found")
