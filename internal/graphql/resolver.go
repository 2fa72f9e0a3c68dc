// Copyright (c) 2026 Corkboard. All rights reserved.

package graphql

import (
	"context"
	"strconv"
	"time"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/corkboard/corkboard/internal/platform/apperr"
	"github.com/corkboard/corkboard/internal/platform/ctxutil"
	"github.com/corkboard/corkboard/internal/users/auth"
)

// # Service Contract

// AccountService defines the credential workflow the resolvers delegate to.
type AccountService interface {
	Register(ctx context.Context, sess auth.Session, input auth.RegisterInput) (*auth.User, error)
	Login(ctx context.Context, sess auth.Session, usernameOrEmail, password string) (*auth.User, error)
	Logout(ctx context.Context, sess auth.Session) bool
	Me(ctx context.Context, sess auth.Session) (*auth.User, error)
	ForgotPassword(ctx context.Context, email string) (bool, error)
	ChangePassword(ctx context.Context, sess auth.Session, token, newPassword string) (*auth.User, error)
}

// # Root Resolver

// RootResolver hosts every query and mutation of the schema.
type RootResolver struct {
	service AccountService
}

// NewRootResolver constructs a new RootResolver with necessary dependencies.
func NewRootResolver(service AccountService) *RootResolver {
	return &RootResolver{service: service}
}

// Me resolves the account bound to the caller's session, or null.
func (resolver *RootResolver) Me(ctx context.Context) (*userResolver, error) {
	user, err := resolver.service.Me(ctx, ctxutil.GetSession(ctx))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}
	return &userResolver{user: user}, nil
}

// Register creates a new account and logs the caller in.
func (resolver *RootResolver) Register(ctx context.Context, args struct {
	Options registerInput
}) (*userResponseResolver, error) {
	user, err := resolver.service.Register(ctx, ctxutil.GetSession(ctx), auth.RegisterInput{
		Username: args.Options.Username,
		Email:    args.Options.Email,
		Password: args.Options.Password,
	})
	return newUserResponse(user, err)
}

// Login authenticates by username or email and binds the session.
func (resolver *RootResolver) Login(ctx context.Context, args struct {
	UsernameOrEmail string
	Password        string
}) (*userResponseResolver, error) {
	user, err := resolver.service.Login(ctx, ctxutil.GetSession(ctx), args.UsernameOrEmail, args.Password)
	return newUserResponse(user, err)
}

// Logout destroys the caller's session.
func (resolver *RootResolver) Logout(ctx context.Context) bool {
	return resolver.service.Logout(ctx, ctxutil.GetSession(ctx))
}

// ForgotPassword starts the password-reset flow for the given email.
func (resolver *RootResolver) ForgotPassword(ctx context.Context, args struct {
	Email string
}) (bool, error) {
	return resolver.service.ForgotPassword(ctx, args.Email)
}

// ChangePassword completes the password-reset flow.
func (resolver *RootResolver) ChangePassword(ctx context.Context, args struct {
	Token       string
	NewPassword string
}) (*userResponseResolver, error) {
	user, err := resolver.service.ChangePassword(ctx, ctxutil.GetSession(ctx), args.Token, args.NewPassword)
	return newUserResponse(user, err)
}

// registerInput mirrors the UsernamePasswordInput schema type.
type registerInput struct {
	Username string
	Email    string
	Password string
}

// # Response Envelope

// newUserResponse maps a service result onto the UserResponse envelope.
//
// Validation errors (field-scoped, client-caused) land in the errors list;
// anything else propagates as a GraphQL error.
func newUserResponse(user *auth.User, err error) (*userResponseResolver, error) {
	if err != nil {
		appErr := apperr.As(err)
		if appErr != nil && appErr.Code == apperr.CodeValidation && len(appErr.Details) > 0 {
			return &userResponseResolver{fieldErrors: appErr.Details}, nil
		}
		return nil, err
	}
	return &userResponseResolver{user: user}, nil
}

type userResponseResolver struct {
	fieldErrors []apperr.FieldError
	user        *auth.User
}

func (resolver *userResponseResolver) Errors() *[]*fieldErrorResolver {
	if len(resolver.fieldErrors) == 0 {
		return nil
	}
	resolvers := make([]*fieldErrorResolver, 0, len(resolver.fieldErrors))
	for _, fieldError := range resolver.fieldErrors {
		resolvers = append(resolvers, &fieldErrorResolver{fieldError: fieldError})
	}
	return &resolvers
}

func (resolver *userResponseResolver) User() *userResolver {
	if resolver.user == nil {
		return nil
	}
	return &userResolver{user: resolver.user}
}

type fieldErrorResolver struct {
	fieldError apperr.FieldError
}

func (resolver *fieldErrorResolver) Field() string   { return resolver.fieldError.Field }
func (resolver *fieldErrorResolver) Message() string { return resolver.fieldError.Message }

// # User Resolver

type userResolver struct {
	user *auth.User
}

func (resolver *userResolver) ID() graphqlgo.ID {
	return graphqlgo.ID(strconv.FormatInt(resolver.user.ID, 10))
}

func (resolver *userResolver) Username() string { return resolver.user.Username }
func (resolver *userResolver) Email() string    { return resolver.user.Email }

func (resolver *userResolver) CreatedAt() string {
	return resolver.user.CreatedAt.Format(time.RFC3339)
}

func (resolver *userResolver) UpdatedAt() string {
	return resolver.user.UpdatedAt.Format(time.RFC3339)
}
