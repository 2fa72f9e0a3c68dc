// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package auth implements the credential-and-session workflow.

It defines the core domain entity (User) and the logic for registration,
login, logout, identity resolution, and password recovery.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies; persistence, caching, hashing, and mail delivery are
collaborators reached through the interfaces in store.go.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered Corkboard account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Field names used in validation errors returned to the client.
const (
	FieldUsername        = "username"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldNewPassword     = "newPassword"
	FieldUsernameOrEmail = "usernameOrEmail"
	FieldToken           = "token"
)
