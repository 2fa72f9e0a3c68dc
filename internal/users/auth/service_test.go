// Copyright (c) 2026 Corkboard. All rights reserved.

package auth_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corkboard/corkboard/internal/platform/apperr"
	"github.com/corkboard/corkboard/internal/platform/sec"
	"github.com/corkboard/corkboard/internal/users/auth"
)

// # Fakes

type fakeUserRepo struct {
	users     map[int64]*auth.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]*auth.User), nextID: 1}
}

func (repo *fakeUserRepo) add(username, email, password string) *auth.User {
	hash, err := sec.HashPassword(password)
	if err != nil {
		panic(err)
	}
	user := &auth.User{
		ID:           repo.nextID,
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	repo.users[user.ID] = user
	repo.nextID++
	return user
}

func (repo *fakeUserRepo) Create(_ context.Context, user *auth.User) error {
	if repo.createErr != nil {
		return repo.createErr
	}
	for _, existing := range repo.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return apperr.Conflict("Account already exists")
		}
	}
	user.ID = repo.nextID
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	repo.users[user.ID] = user
	repo.nextID++
	return nil
}

func (repo *fakeUserRepo) FindByID(_ context.Context, id int64) (*auth.User, error) {
	if user, ok := repo.users[id]; ok {
		return user, nil
	}
	return nil, apperr.NotFound("User not found")
}

func (repo *fakeUserRepo) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this email")
}

func (repo *fakeUserRepo) FindByUsername(_ context.Context, username string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User not found with this username")
}

func (repo *fakeUserRepo) UpdatePassword(_ context.Context, userID int64, newHash string) error {
	user, ok := repo.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	user.PasswordHash = newHash
	user.UpdatedAt = time.Now()
	return nil
}

type storedToken struct {
	userID int64
	ttl    time.Duration
}

type fakeTokenRepo struct {
	tokens map[string]storedToken
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]storedToken)}
}

func (repo *fakeTokenRepo) Set(_ context.Context, token string, userID int64, ttl time.Duration) error {
	repo.tokens[token] = storedToken{userID: userID, ttl: ttl}
	return nil
}

func (repo *fakeTokenRepo) Get(_ context.Context, token string) (int64, error) {
	if stored, ok := repo.tokens[token]; ok {
		return stored.userID, nil
	}
	return 0, apperr.NotFound("Reset token is invalid or expired")
}

func (repo *fakeTokenRepo) Delete(_ context.Context, token string) error {
	delete(repo.tokens, token)
	return nil
}

type sentMail struct {
	to      string
	subject string
	html    string
}

type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (mailer *fakeMailer) Send(_ context.Context, to, subject, html string) error {
	if mailer.sendErr != nil {
		return mailer.sendErr
	}
	mailer.sent = append(mailer.sent, sentMail{to: to, subject: subject, html: html})
	return nil
}

type fakeSession struct {
	userID     int64
	bound      bool
	destroyed  bool
	destroyErr error
}

func (sess *fakeSession) UserID() (int64, bool) {
	if !sess.bound {
		return 0, false
	}
	return sess.userID, true
}

func (sess *fakeSession) SetUserID(id int64) {
	sess.userID = id
	sess.bound = true
}

func (sess *fakeSession) Destroy(_ context.Context) error {
	if sess.destroyErr != nil {
		return sess.destroyErr
	}
	sess.destroyed = true
	sess.bound = false
	return nil
}

type fixture struct {
	users   *fakeUserRepo
	tokens  *fakeTokenRepo
	mailer  *fakeMailer
	service *auth.Service
}

func newFixture() *fixture {
	users := newFakeUserRepo()
	tokens := newFakeTokenRepo()
	mailer := &fakeMailer{}
	return &fixture{
		users:   users,
		tokens:  tokens,
		mailer:  mailer,
		service: auth.NewService(users, tokens, mailer, "http://localhost:3000"),
	}
}

// requireFieldError asserts err is a validation error with exactly one detail.
func requireFieldError(t *testing.T, err error, field, message string) {
	t.Helper()
	appErr := apperr.As(err)
	require.NotNil(t, appErr, "expected an AppError, got %v", err)
	assert.Equal(t, apperr.CodeValidation, appErr.Code)
	require.Len(t, appErr.Details, 1)
	assert.Equal(t, field, appErr.Details[0].Field)
	assert.Equal(t, message, appErr.Details[0].Message)
}

// # Registration

func TestService_Register_ValidationOrder(t *testing.T) {
	testCases := []struct {
		name        string
		input       auth.RegisterInput
		wantField   string
		wantMessage string
	}{
		{
			name:        "rejects email without at sign",
			input:       auth.RegisterInput{Username: "alice", Email: "not-an-email", Password: "pw1234"},
			wantField:   auth.FieldEmail,
			wantMessage: "invalid email",
		},
		{
			name:        "email rule fires before username rule",
			input:       auth.RegisterInput{Username: "a@b", Email: "bad", Password: "pw1234"},
			wantField:   auth.FieldEmail,
			wantMessage: "invalid email",
		},
		{
			name:        "rejects username containing at sign",
			input:       auth.RegisterInput{Username: "alice@home", Email: "alice@example.com", Password: "pw1234"},
			wantField:   auth.FieldUsername,
			wantMessage: "cannot include an @ sign",
		},
		{
			name:        "rejects two character username",
			input:       auth.RegisterInput{Username: "al", Email: "alice@example.com", Password: "pw1234"},
			wantField:   auth.FieldUsername,
			wantMessage: "length must be greater than 2",
		},
		{
			name:        "username rule fires before password rule",
			input:       auth.RegisterInput{Username: "al", Email: "alice@example.com", Password: "x"},
			wantField:   auth.FieldUsername,
			wantMessage: "length must be greater than 2",
		},
		{
			name:        "rejects three character password",
			input:       auth.RegisterInput{Username: "alice", Email: "alice@example.com", Password: "abc"},
			wantField:   auth.FieldPassword,
			wantMessage: "length must be greater than 3",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fx := newFixture()
			sess := &fakeSession{}

			user, err := fx.service.Register(context.Background(), sess, testCase.input)

			assert.Nil(t, user)
			requireFieldError(t, err, testCase.wantField, testCase.wantMessage)
			assert.False(t, sess.bound, "session must stay anonymous on validation failure")
			assert.Empty(t, fx.users.users, "nothing should be persisted")
		})
	}
}

func TestService_Register_Success(t *testing.T) {
	fx := newFixture()
	sess := &fakeSession{}

	user, err := fx.service.Register(context.Background(), sess, auth.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1234",
	})

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotZero(t, user.ID)
	assert.Equal(t, "alice", user.Username)
	assert.NotEqual(t, "pw1234", user.PasswordHash, "password must never be stored in clear")
	assert.True(t, sec.CheckPasswordHash("pw1234", user.PasswordHash))

	boundID, ok := sess.UserID()
	require.True(t, ok, "session must be bound after registration")
	assert.Equal(t, user.ID, boundID)
}

func TestService_Register_DuplicateUsername(t *testing.T) {
	fx := newFixture()
	fx.users.add("alice", "alice@example.com", "pw1234")
	sess := &fakeSession{}

	user, err := fx.service.Register(context.Background(), sess, auth.RegisterInput{
		Username: "alice",
		Email:    "other@example.com",
		Password: "pw1234",
	})

	assert.Nil(t, user)
	requireFieldError(t, err, auth.FieldUsername, "username already taken")
	assert.False(t, sess.bound)
}

func TestService_Register_UnclassifiedStoreError(t *testing.T) {
	fx := newFixture()
	fx.users.createErr = errors.New("connection reset by peer")
	sess := &fakeSession{}

	user, err := fx.service.Register(context.Background(), sess, auth.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pw1234",
	})

	assert.Nil(t, user)
	// Legacy behavior: raw error detail surfaces in the field message.
	requireFieldError(t, err, auth.FieldUsername, "connection reset by peer")
}

// # Authentication

func TestService_Login(t *testing.T) {
	testCases := []struct {
		name            string
		usernameOrEmail string
		password        string
		wantField       string
		wantMessage     string
	}{
		{
			name:            "succeeds by username",
			usernameOrEmail: "alice",
			password:        "pw1234",
		},
		{
			name:            "succeeds by email",
			usernameOrEmail: "alice@example.com",
			password:        "pw1234",
		},
		{
			name:            "unknown username",
			usernameOrEmail: "nobody",
			password:        "pw1234",
			wantField:       auth.FieldUsernameOrEmail,
			wantMessage:     "that account doesn't exist",
		},
		{
			name:            "unknown email",
			usernameOrEmail: "nobody@example.com",
			password:        "pw1234",
			wantField:       auth.FieldUsernameOrEmail,
			wantMessage:     "that account doesn't exist",
		},
		{
			name:            "wrong password",
			usernameOrEmail: "alice",
			password:        "wrong",
			wantField:       auth.FieldPassword,
			wantMessage:     "incorrect password",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			fx := newFixture()
			registered := fx.users.add("alice", "alice@example.com", "pw1234")
			sess := &fakeSession{}

			user, err := fx.service.Login(context.Background(), sess, testCase.usernameOrEmail, testCase.password)

			if testCase.wantField != "" {
				assert.Nil(t, user)
				requireFieldError(t, err, testCase.wantField, testCase.wantMessage)
				assert.False(t, sess.bound)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, user)
			assert.Equal(t, registered.ID, user.ID)

			boundID, ok := sess.UserID()
			require.True(t, ok)
			assert.Equal(t, registered.ID, boundID)
		})
	}
}

func TestService_Logout(t *testing.T) {
	fx := newFixture()

	t.Run("destroys the session and reports true", func(t *testing.T) {
		sess := &fakeSession{userID: 7, bound: true}

		ok := fx.service.Logout(context.Background(), sess)

		assert.True(t, ok)
		assert.True(t, sess.destroyed)
	})

	t.Run("reports false when the destroy fails", func(t *testing.T) {
		sess := &fakeSession{userID: 7, bound: true, destroyErr: errors.New("redis unavailable")}

		ok := fx.service.Logout(context.Background(), sess)

		assert.False(t, ok)
		assert.False(t, sess.destroyed)
	})
}

func TestService_Me(t *testing.T) {
	fx := newFixture()
	registered := fx.users.add("alice", "alice@example.com", "pw1234")

	t.Run("anonymous session yields nil without error", func(t *testing.T) {
		user, err := fx.service.Me(context.Background(), &fakeSession{})

		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("bound session yields the user", func(t *testing.T) {
		sess := &fakeSession{userID: registered.ID, bound: true}

		user, err := fx.service.Me(context.Background(), sess)

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, registered.ID, user.ID)
	})

	t.Run("stale id yields nil without error", func(t *testing.T) {
		sess := &fakeSession{userID: 9999, bound: true}

		user, err := fx.service.Me(context.Background(), sess)

		require.NoError(t, err)
		assert.Nil(t, user)
	})
}

// # Password Recovery

func TestService_ForgotPassword_UnknownEmail(t *testing.T) {
	fx := newFixture()

	ok, err := fx.service.ForgotPassword(context.Background(), "nobody@example.com")

	require.NoError(t, err)
	assert.True(t, ok, "unknown addresses must be indistinguishable from known ones")
	assert.Empty(t, fx.tokens.tokens, "no token may be minted")
	assert.Empty(t, fx.mailer.sent, "no mail may be sent")
}

func TestService_ForgotPassword_KnownEmail(t *testing.T) {
	fx := newFixture()
	registered := fx.users.add("alice", "alice@example.com", "pw1234")

	ok, err := fx.service.ForgotPassword(context.Background(), "alice@example.com")

	require.NoError(t, err)
	assert.True(t, ok)

	require.Len(t, fx.tokens.tokens, 1)
	var token string
	for minted, stored := range fx.tokens.tokens {
		token = minted
		assert.Equal(t, registered.ID, stored.userID)
		assert.Equal(t, auth.ResetTokenTTL, stored.ttl)
	}

	require.Len(t, fx.mailer.sent, 1)
	mail := fx.mailer.sent[0]
	assert.Equal(t, "alice@example.com", mail.to)
	assert.Contains(t, mail.html, "http://localhost:3000/change-password/"+token)
	assert.Contains(t, mail.html, ">reset password</a>")
}

func TestService_ForgotPassword_MailFailure(t *testing.T) {
	fx := newFixture()
	fx.users.add("alice", "alice@example.com", "pw1234")
	fx.mailer.sendErr = errors.New("smtp relay down")

	ok, err := fx.service.ForgotPassword(context.Background(), "alice@example.com")

	require.NoError(t, err, "delivery failures are logged, never surfaced")
	assert.True(t, ok)
	assert.Len(t, fx.tokens.tokens, 1, "the token stays usable even when the mail is lost")
}

func TestService_ChangePassword(t *testing.T) {
	t.Run("rejects short new password before touching the token", func(t *testing.T) {
		fx := newFixture()
		sess := &fakeSession{}

		user, err := fx.service.ChangePassword(context.Background(), sess, "any-token", "abc")

		assert.Nil(t, user)
		requireFieldError(t, err, auth.FieldNewPassword, "length must be greater than 3")
	})

	t.Run("reports expired for an unknown token", func(t *testing.T) {
		fx := newFixture()
		sess := &fakeSession{}

		user, err := fx.service.ChangePassword(context.Background(), sess, "never-minted", "pw5678")

		assert.Nil(t, user)
		requireFieldError(t, err, auth.FieldToken, "token expired")
	})

	t.Run("reports missing user and keeps the token intact", func(t *testing.T) {
		fx := newFixture()
		require.NoError(t, fx.tokens.Set(context.Background(), "orphan-token", 424242, auth.ResetTokenTTL))
		sess := &fakeSession{}

		user, err := fx.service.ChangePassword(context.Background(), sess, "orphan-token", "pw5678")

		assert.Nil(t, user)
		requireFieldError(t, err, auth.FieldToken, "user no longer exists")
		assert.Contains(t, fx.tokens.tokens, "orphan-token", "token is only consumed on success")
	})

	t.Run("replaces the hash, consumes the token, and logs in", func(t *testing.T) {
		fx := newFixture()
		registered := fx.users.add("alice", "alice@example.com", "pw1234")
		require.NoError(t, fx.tokens.Set(context.Background(), "reset-token", registered.ID, auth.ResetTokenTTL))
		sess := &fakeSession{}

		user, err := fx.service.ChangePassword(context.Background(), sess, "reset-token", "pw5678")

		require.NoError(t, err)
		require.NotNil(t, user)
		assert.True(t, sec.CheckPasswordHash("pw5678", fx.users.users[registered.ID].PasswordHash))
		assert.False(t, sec.CheckPasswordHash("pw1234", fx.users.users[registered.ID].PasswordHash))
		assert.NotContains(t, fx.tokens.tokens, "reset-token", "token must be single-use")

		boundID, ok := sess.UserID()
		require.True(t, ok)
		assert.Equal(t, registered.ID, boundID)
	})

	t.Run("second use of a consumed token reports expired", func(t *testing.T) {
		fx := newFixture()
		registered := fx.users.add("alice", "alice@example.com", "pw1234")
		require.NoError(t, fx.tokens.Set(context.Background(), "reset-token", registered.ID, auth.ResetTokenTTL))

		_, err := fx.service.ChangePassword(context.Background(), &fakeSession{}, "reset-token", "pw5678")
		require.NoError(t, err)

		user, err := fx.service.ChangePassword(context.Background(), &fakeSession{}, "reset-token", "pw9999")

		assert.Nil(t, user)
		requireFieldError(t, err, auth.FieldToken, "token expired")
	})
}

// Guards against accidentally weakening the reset-link format the frontend
// route depends on.
func TestService_ResetLinkShape(t *testing.T) {
	fx := newFixture()
	fx.users.add("alice", "alice@example.com", "pw1234")

	_, err := fx.service.ForgotPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)

	require.Len(t, fx.mailer.sent, 1)
	html := fx.mailer.sent[0].html
	assert.True(t, strings.HasPrefix(html, `<a href="`), "mail body is a single anchor")

	for token := range fx.tokens.tokens {
		assert.NotContains(t, token, "/", "token must be path-segment safe")
	}
}
