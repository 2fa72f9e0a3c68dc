// Copyright (c) 2026 Corkboard. All rights reserved.

package auth

import (
	"context"
	"time"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
//
// Implementations classify failures at their boundary: a missing row is
// [apperr.NotFound], a unique-constraint violation on Create is
// [apperr.Conflict]. The workflow never inspects raw driver errors.
type UserRepository interface {

	/*
		FindByID returns the account with the given numeric identifier.

		Parameters:
		  - ctx: context.Context
		  - id: int64

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(ctx context.Context, id int64) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - ctx: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByEmail(ctx context.Context, email string) (*User, error)

	/*
		FindByUsername returns the account with the given username.

		Parameters:
		  - ctx: context.Context
		  - username: string

		Returns:
		  - *User: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUsername(ctx context.Context, username string) (*User, error)

	/*
		Create persists a brand-new user account and fills in its
		generated identifier and timestamps.

		Parameters:
		  - ctx: context.Context
		  - user: *User

		Returns:
		  - error: apperr.Conflict on a duplicate username/email, or
		    other persistence failures
	*/
	Create(ctx context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - ctx: context.Context
		  - userID: int64
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(ctx context.Context, userID int64, newHash string) error
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password
// reset tokens. Expiry is enforced by the cache TTL, never re-checked here.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - ctx: context.Context
		  - token: string
		  - userID: int64
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(ctx context.Context, token string, userID int64, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - ctx: context.Context
		  - token: string

		Returns:
		  - int64: UserID
		  - error: apperr.NotFound when the token is absent or expired
	*/
	Get(ctx context.Context, token string) (int64, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - ctx: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(ctx context.Context, token string) error
}

// # Collaborator Contracts

// Mailer delivers a single HTML email.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// Session is the explicit per-request session handed in by the transport.
//
// The workflow mutates it through this narrow contract only; the concrete
// cookie-backed implementation lives in internal/platform/session.
type Session interface {
	// UserID returns the bound user identifier, if any.
	UserID() (int64, bool)
	// SetUserID binds the session to a user.
	SetUserID(id int64)
	// Destroy deletes the server-side session record.
	Destroy(ctx context.Context) error
}
