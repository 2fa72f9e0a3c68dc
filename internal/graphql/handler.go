// Copyright (c) 2026 Corkboard. All rights reserved.

package graphql

import (
	"net/http"

	graphqlgo "github.com/graph-gophers/graphql-go"

	"github.com/corkboard/corkboard/internal/platform/apperr"
	"github.com/corkboard/corkboard/internal/platform/constants"
	"github.com/corkboard/corkboard/internal/platform/ctxutil"
	requestutil "github.com/corkboard/corkboard/internal/platform/request"
	"github.com/corkboard/corkboard/internal/platform/respond"
	"github.com/corkboard/corkboard/internal/platform/session"
)

// AppConfig defines the behavior the handler needs from configuration.
type AppConfig interface {
	IsProduction() bool
}

// Handler serves the /graphql endpoint.
//
// It owns the session lifecycle around schema execution: the session is
// loaded from the qid cookie before Exec and committed back to the store
// afterwards, so resolvers only ever see a live [session.Session].
type Handler struct {
	schema   *graphqlgo.Schema
	sessions *session.Store
	cfg      AppConfig
}

// NewHandler constructs a new Handler with necessary dependencies.
func NewHandler(schema *graphqlgo.Schema, sessions *session.Store, cfg AppConfig) *Handler {
	return &Handler{schema: schema, sessions: sessions, cfg: cfg}
}

// queryPayload is the standard GraphQL-over-HTTP request body.
type queryPayload struct {
	Query         string                 `json:"query"`
	OperationName string                 `json:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// ServeHTTP implements http.Handler for POST /graphql.
func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		respond.Error(writer, request, apperr.ValidationError("Only POST is supported on /graphql"))
		return
	}

	var payload queryPayload
	if err := requestutil.DecodeJSON(request, &payload); err != nil {
		respond.Error(writer, request, err)
		return
	}

	sess, err := handler.loadSession(request)
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	ctx := ctxutil.WithSession(request.Context(), sess)
	response := handler.schema.Exec(ctx, payload.Query, payload.OperationName, payload.Variables)

	// Commit the session before the body: Set-Cookie is a header.
	handler.commitSession(writer, request, sess)

	respond.JSON(writer, http.StatusOK, response)
}

// loadSession resolves the caller's session from the qid cookie, falling back
// to a fresh anonymous session when the cookie is absent.
func (handler *Handler) loadSession(request *http.Request) (*session.Session, error) {
	cookie, err := request.Cookie(constants.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return handler.sessions.New(), nil
	}
	return handler.sessions.Load(request.Context(), cookie.Value)
}

// commitSession persists session mutations and keeps the cookie in sync.
//
// Destroyed sessions expire the cookie. Untouched sessions write nothing: an
// anonymous query never sets a cookie.
func (handler *Handler) commitSession(writer http.ResponseWriter, request *http.Request, sess *session.Session) {
	logger := ctxutil.GetLogger(request.Context())

	if sess.Destroyed() {
		http.SetCookie(writer, &http.Cookie{
			Name:     constants.SessionCookieName,
			Value:    "",
			Path:     constants.SessionCookiePath,
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   handler.cfg.IsProduction(),
			SameSite: http.SameSiteLaxMode,
		})
		return
	}

	if !sess.Dirty() {
		return
	}

	if err := handler.sessions.Save(request.Context(), sess); err != nil {
		logger.ErrorContext(request.Context(), "session_save_failed",
			"error", err.Error(),
			"session_id", sess.ID(),
		)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sess.ID(),
		Path:     constants.SessionCookiePath,
		MaxAge:   int(constants.DefaultSessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}
