// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package uuid provides time-ordered unique identifiers for the platform.

It wraps the standard UUID library to specifically generate Version 7 values,
which are optimized for database and cache key locality.

Advantages:

  - Sortable: Naturally ordered by creation time (millisecond precision).
  - Compact: 128-bit storage, compatible with standard 'uuid' types.

Session identifiers and request correlation ids use this generator.
*/
package uuid

import "github.com/google/uuid"

// # Generators

// New generates a new UUIDv7 string.
func New() string {

	// Create a new version 7 UUID (time-sortable)
	id, err := uuid.NewV7()

	// entropy failure is an unrecoverable system-level error
	if err != nil {
		panic("uuid: failed to generate UUID: " + err.Error())
	}

	// Convert the UUID to a string
	return id.String()
}

// NewRandom generates a new UUIDv4 string.
//
// Used where the identifier must be an unguessable credential (password-reset
// tokens) rather than a sortable key.
func NewRandom() string {
	return uuid.NewString()
}
