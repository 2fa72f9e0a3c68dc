// Copyright (c) 2026 Corkboard. All rights reserved.

package auth

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/corkboard/corkboard/internal/platform/apperr"
	"github.com/corkboard/corkboard/internal/platform/ctxutil"
	"github.com/corkboard/corkboard/internal/platform/sec"
	"github.com/corkboard/corkboard/pkg/uuid"
)

// # Service

// Service implements the credential-and-session workflow.
//
// Every operation is a short chain of sequential, dependent I/O calls; there
// is no in-process locking because correctness is delegated to the
// collaborators (the store's unique constraints, the cache's TTLs).
type Service struct {
	users       UserRepository
	resetTokens ResetTokenRepository
	mailer      Mailer
	frontendURL string
}

// NewService constructs a new [Service] with necessary dependencies.
//
// frontendURL is the base URL embedded in password-reset links.
func NewService(users UserRepository, resetTokens ResetTokenRepository, mailer Mailer, frontendURL string) *Service {
	return &Service{
		users:       users,
		resetTokens: resetTokens,
		mailer:      mailer,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// validateRegister applies the registration rules in fixed priority order and
// returns the first violation only (fail-fast, never accumulated).
func validateRegister(input RegisterInput) *apperr.AppError {
	if !strings.Contains(input.Email, "@") {
		return apperr.FieldValidation(FieldEmail, "invalid email")
	}
	if strings.Contains(input.Username, "@") {
		return apperr.FieldValidation(FieldUsername, "cannot include an @ sign")
	}
	if utf8.RuneCountInString(input.Username) <= MinUsernameRunes {
		return apperr.FieldValidation(FieldUsername, fmt.Sprintf("length must be greater than %d", MinUsernameRunes))
	}
	if utf8.RuneCountInString(input.Password) <= MinPasswordRunes {
		return apperr.FieldValidation(FieldPassword, fmt.Sprintf("length must be greater than %d", MinPasswordRunes))
	}
	return nil
}

/*
Register validates, hashes, and persists a brand new user account, then binds
the caller's session to it.

Description: Validation is fail-fast in fixed order (email format, username
content, username length, password length). Duplicate accounts are detected by
the store's unique constraint, not by a racy pre-check.

Parameters:
  - ctx: context.Context
  - sess: Session (mutated on success)
  - input: RegisterInput

Returns:
  - *User: Created entity
  - error: Single-field validation error, or storage failures
*/
func (service *Service) Register(ctx context.Context, sess Session, input RegisterInput) (*User, error) {
	if verr := validateRegister(input); verr != nil {
		return nil, verr
	}

	// Prevent storing plain-text passwords. Default cost balances security
	// against CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	user := &User{
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
	}

	if err := service.users.Create(ctx, user); err != nil {
		if apperr.IsConflict(err) {
			return nil, apperr.FieldValidation(FieldUsername, "username already taken")
		}
		// Legacy behavior: unclassified persistence failures surface their
		// detail in the username field error. Known leakage, kept on purpose.
		return nil, apperr.FieldValidation(FieldUsername, err.Error())
	}

	sess.SetUserID(user.ID)
	return user, nil
}

// # Authentication Flow

/*
Login verifies credentials and binds the caller's session to the account.

Description: The identifier is matched against email when it contains an "@",
against username otherwise. The lookup error and the password error are
reported on different fields; never both together.

Parameters:
  - ctx: context.Context
  - sess: Session (mutated on success)
  - usernameOrEmail: string
  - password: string

Returns:
  - *User: Authenticated entity
  - error: Single-field validation error, or storage failures
*/
func (service *Service) Login(ctx context.Context, sess Session, usernameOrEmail, password string) (*User, error) {
	var user *User
	var err error
	if strings.Contains(usernameOrEmail, "@") {
		user, err = service.users.FindByEmail(ctx, usernameOrEmail)
	} else {
		user, err = service.users.FindByUsername(ctx, usernameOrEmail)
	}

	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.FieldValidation(FieldUsernameOrEmail, "that account doesn't exist")
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	if !sec.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperr.FieldValidation(FieldPassword, "incorrect password")
	}

	sess.SetUserID(user.ID)
	return user, nil
}

/*
Logout destroys the caller's session record.

Description: Reports success as a boolean; a failing destroy never raises.
The transport clears the cookie only when the destroy went through.

Parameters:
  - ctx: context.Context
  - sess: Session

Returns:
  - bool: true when the session record is gone
*/
func (service *Service) Logout(ctx context.Context, sess Session) bool {
	if err := sess.Destroy(ctx); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_session_destroy_failed",
			"error", err.Error(),
		)
		return false
	}
	return true
}

/*
Me resolves the account bound to the caller's session.

Description: An anonymous session, and a session whose stored identifier no
longer resolves (user deleted), both yield absence — nil without error.

Parameters:
  - ctx: context.Context
  - sess: Session

Returns:
  - *User: Bound entity, or nil when anonymous
  - error: Storage failures only
*/
func (service *Service) Me(ctx context.Context, sess Session) (*User, error) {
	userID, ok := sess.UserID()
	if !ok {
		return nil, nil
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth_service_me_lookup_failed: %w", err)
	}

	return user, nil
}

// # Password Recovery

/*
ForgotPassword initiates the reset flow for the given email.

Description: Always reports true for unknown addresses so callers cannot
enumerate accounts. For known addresses it mints a random opaque token, maps
it to the user in the cache for [ResetTokenTTL], and emails a reset link.
Delivery failures are logged and swallowed; surfacing them would reveal
account existence.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - bool: Always true unless a collaborator fails
  - error: Store or cache failures (never mail failures)
*/
func (service *Service) ForgotPassword(ctx context.Context, email string) (bool, error) {
	user, err := service.users.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return true, nil
		}
		return false, fmt.Errorf("auth_service_forgot_lookup_failed: %w", err)
	}

	// Unguessable v4 token; sortability would be a liability here.
	token := uuid.NewRandom()

	if err := service.resetTokens.Set(ctx, token, user.ID, ResetTokenTTL); err != nil {
		return false, fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	link := fmt.Sprintf("%s/change-password/%s", service.frontendURL, token)
	html := fmt.Sprintf(`<a href="%s">reset password</a>`, link)

	if err := service.mailer.Send(ctx, user.Email, "Reset your password", html); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "auth_reset_mail_failed",
			"error", err.Error(),
		)
	}

	return true, nil
}

/*
ChangePassword completes the reset flow: consumes the token, replaces the
stored hash, and logs the user in as a side effect.

Description: The token is single-use: it is deleted after the password update,
so a second call with the same token reports it expired. The lookup and the
delete are separate round-trips; concurrent calls with the same token may both
succeed within that window.

Parameters:
  - ctx: context.Context
  - sess: Session (mutated on success)
  - token: string
  - newPassword: string

Returns:
  - *User: Updated entity
  - error: Single-field validation error, or storage failures
*/
func (service *Service) ChangePassword(ctx context.Context, sess Session, token, newPassword string) (*User, error) {
	if utf8.RuneCountInString(newPassword) <= MinPasswordRunes {
		return nil, apperr.FieldValidation(FieldNewPassword, fmt.Sprintf("length must be greater than %d", MinPasswordRunes))
	}

	userID, err := service.resetTokens.Get(ctx, token)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.FieldValidation(FieldToken, "token expired")
		}
		return nil, fmt.Errorf("auth_service_reset_token_lookup_failed: %w", err)
	}

	user, err := service.users.FindByID(ctx, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.FieldValidation(FieldToken, "user no longer exists")
		}
		return nil, fmt.Errorf("auth_service_reset_user_lookup_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return nil, fmt.Errorf("auth_service_reset_hash_failed: %w", err)
	}

	if err := service.users.UpdatePassword(ctx, user.ID, hashedPassword); err != nil {
		return nil, fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}
	user.PasswordHash = hashedPassword

	// Single-use: the mapping goes away before the caller sees success.
	if err := service.resetTokens.Delete(ctx, token); err != nil {
		return nil, fmt.Errorf("auth_service_reset_token_delete_failed: %w", err)
	}

	sess.SetUserID(user.ID)
	return user, nil
}
