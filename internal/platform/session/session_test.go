// Copyright (c) 2026 Corkboard. All rights reserved.

package session_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/corkboard/corkboard/internal/platform/session"
)

/*
TestSession_Fresh verifies the state of a newly minted anonymous session.
*/
func TestSession_Fresh(t *testing.T) {
	store := session.NewStore(nil, time.Hour)
	sess := store.New()

	assert.NotEmpty(t, sess.ID())
	assert.True(t, sess.IsNew())
	assert.False(t, sess.Dirty())
	assert.False(t, sess.Destroyed())

	_, bound := sess.UserID()
	assert.False(t, bound)
}

/*
TestSession_Values verifies the key/value contract and dirty tracking.
*/
func TestSession_Values(t *testing.T) {
	store := session.NewStore(nil, time.Hour)
	sess := store.New()

	// Reading a missing key
	_, ok := sess.Get("theme")
	assert.False(t, ok)

	// Writing marks the session dirty
	sess.Set("theme", "dark")
	assert.True(t, sess.Dirty())

	value, ok := sess.Get("theme")
	assert.True(t, ok)
	assert.Equal(t, "dark", value)

	// Deleting removes the value
	sess.Delete("theme")
	_, ok = sess.Get("theme")
	assert.False(t, ok)
}

/*
TestSession_UserID verifies the typed user-identifier helpers.
*/
func TestSession_UserID(t *testing.T) {
	store := session.NewStore(nil, time.Hour)
	sess := store.New()

	sess.SetUserID(42)
	assert.True(t, sess.Dirty())

	id, bound := sess.UserID()
	assert.True(t, bound)
	assert.Equal(t, int64(42), id)
}

/*
TestSession_UserID_Garbage verifies that a non-numeric stored id reads as anonymous.
*/
func TestSession_UserID_Garbage(t *testing.T) {
	store := session.NewStore(nil, time.Hour)
	sess := store.New()

	sess.Set("user_id", "not-a-number")

	_, bound := sess.UserID()
	assert.False(t, bound)
}
