package repository

import "errors"

// ErrNotFound is returned when a requested record is not found in the repository.
// This abstracts away the underlying storage implementation from the service layer.
var ErrNotFound = errors.New("record not found")

// ErrInvalidCollection is returned when an id is requested for a collection
// that is not one of the five catalog tables.
var ErrInvalidCollection = errors.New("invalid collection name")
