// Package repository holds the persistence layer: Mongo-backed users and
// products, the Redis token revocation set and the MySQL audit trail.
// The sentinel values below let services tell failure kinds apart without
// knowing which driver produced them.
package repository

import "errors"

// ErrProductNotFound is returned when no product matches the given id.
// Handlers translate it into 404 PRODUCT_NOT_FOUND.
var ErrProductNotFound = errors.New("product not found")

// ErrUserNotFound is returned when no user matches the lookup key.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when the unique email index rejects an insert.
var ErrEmailExists = errors.New("email already exists")
