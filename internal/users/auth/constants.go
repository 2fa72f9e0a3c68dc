// Copyright (c) 2026 Corkboard. All rights reserved.

package auth

import "time"

// # Credential Workflow Constraints

const (
	// ResetTokenTTL is the duration a password reset token remains valid.
	// Three days, so a reset link still works after a weekend.
	ResetTokenTTL = 3 * 24 * time.Hour

	// MinUsernameRunes is the exclusive lower bound on username length.
	MinUsernameRunes = 2

	// MinPasswordRunes is the exclusive lower bound on password length.
	MinPasswordRunes = 3
)
