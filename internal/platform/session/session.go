// Copyright (c) 2026 Corkboard. All rights reserved.

/*
Package session implements server-side sessions referenced by a client cookie.

A session is an explicit, mutable object handed to each operation by the
transport layer. Domain code never reaches into a global or request-scoped
context for it; the object travels by reference.

Architecture:

  - Session: In-memory view of one session record (string key/value pairs).
  - Store: Redis-backed persistence with a sliding TTL.
  - Transport contract: the HTTP layer loads the session before execution and
    saves it (or clears the cookie after a destroy) before writing the response.

Absent or expired records simply yield a fresh anonymous session; expiry is
enforced by the cache, never re-checked here.
*/
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/corkboard/corkboard/internal/platform/constants"
	"github.com/corkboard/corkboard/pkg/uuid"
)

// keyUserID is the value slot holding the authenticated user's identifier.
const keyUserID = "user_id"

// # Session Object

// Session is the per-request session record.
//
// # Concurrency
//
// A Session belongs to a single request and is not safe for concurrent use.
type Session struct {
	id        string
	values    map[string]string
	store     *Store
	isNew     bool
	dirty     bool
	destroyed bool
}

// ID returns the opaque session identifier carried by the cookie.
func (s *Session) ID() string { return s.id }

// IsNew reports whether this session was created for the current request
// rather than loaded from the cache.
func (s *Session) IsNew() bool { return s.isNew }

// Dirty reports whether the session has unsaved mutations.
func (s *Session) Dirty() bool { return s.dirty }

// Destroyed reports whether the session record has been deleted.
func (s *Session) Destroyed() bool { return s.destroyed }

// Get returns the value stored under key, if any.
func (s *Session) Get(key string) (string, bool) {
	value, ok := s.values[key]
	return value, ok
}

// Set stores a value under key and marks the session dirty.
func (s *Session) Set(key, value string) {
	s.values[key] = value
	s.dirty = true
}

// Delete removes the value stored under key.
func (s *Session) Delete(key string) {
	if _, ok := s.values[key]; ok {
		delete(s.values, key)
		s.dirty = true
	}
}

// UserID returns the authenticated user's identifier, if the session is bound.
func (s *Session) UserID() (int64, bool) {
	raw, ok := s.values[keyUserID]
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SetUserID binds the session to the given user identifier.
func (s *Session) SetUserID(id int64) {
	s.Set(keyUserID, strconv.FormatInt(id, 10))
}

// Destroy deletes the backing record and marks the session destroyed.
//
// Destroying a session that was never saved is a no-op on the cache side and
// always succeeds. The destroyed flag is only set when the delete went
// through, so the transport clears the cookie exactly on success.
func (s *Session) Destroy(ctx context.Context) error {
	if s.destroyed {
		return nil
	}
	if err := s.store.delete(ctx, s.id); err != nil {
		return err
	}
	s.destroyed = true
	s.values = map[string]string{}
	return nil
}

// # Store

// Store persists sessions in Redis under [constants.RedisPrefixSession] keys.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore constructs a Redis-backed session store with the given TTL.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// New mints a fresh anonymous session with a time-sortable identifier.
func (store *Store) New() *Session {
	return &Session{
		id:     uuid.New(),
		values: map[string]string{},
		store:  store,
		isNew:  true,
	}
}

/*
Load retrieves the session with the given identifier.

Description: A missing or expired record yields a fresh anonymous session,
never an error; only cache connectivity failures surface.

Parameters:
  - ctx: context.Context
  - id: string (cookie-carried session identifier)

Returns:
  - *Session: Hydrated or fresh session
  - error: Cache connectivity failures
*/
func (store *Store) Load(ctx context.Context, id string) (*Session, error) {
	raw, err := store.client.Get(ctx, constants.RedisPrefixSession+id).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return store.New(), nil
		}
		return nil, fmt.Errorf("session_store_load_failed: %w", err)
	}

	values := map[string]string{}
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		// A corrupt record is treated like an absent one.
		return store.New(), nil
	}

	return &Session{id: id, values: values, store: store}, nil
}

/*
Save writes the session record back to the cache with a refreshed TTL.

Parameters:
  - ctx: context.Context
  - session: *Session

Returns:
  - error: Encoding or cache failures
*/
func (store *Store) Save(ctx context.Context, session *Session) error {
	if session.destroyed {
		return nil
	}

	raw, err := json.Marshal(session.values)
	if err != nil {
		return fmt.Errorf("session_store_encode_failed: %w", err)
	}

	key := constants.RedisPrefixSession + session.id
	if err := store.client.Set(ctx, key, raw, store.ttl).Err(); err != nil {
		return fmt.Errorf("session_store_save_failed: %w", err)
	}

	session.dirty = false
	session.isNew = false
	return nil
}

// delete removes the backing record. Deleting an absent key is not an error.
func (store *Store) delete(ctx context.Context, id string) error {
	if err := store.client.Del(ctx, constants.RedisPrefixSession+id).Err(); err != nil {
		return fmt.Errorf("session_store_delete_failed: %w", err)
	}
	return nil
}
