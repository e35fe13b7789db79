// Copyright (c) 2026 Hellomouse. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sec"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	users    map[string]*User
	attempts []*LoginAttempt
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[string]*User{}}
}

func (f *fakeStore) GetUser(ctx context.Context, id string) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetPasswordHash(ctx context.Context, id string) (string, error) {
	u, ok := f.users[id]
	if !ok {
		return "", nil
	}
	return u.PasswordHash, nil
}

func (f *fakeStore) CreateUser(ctx context.Context, u *User) error {
	if _, exists := f.users[u.ID]; exists {
		return apperr.Conflict("Already exists")
	}
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeStore) UpdateSettings(ctx context.Context, id string, settings json.RawMessage) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	u.Settings = settings
	return nil
}

func (f *fakeStore) ChangePassword(ctx context.Context, id, newHash string) error {
	u, ok := f.users[id]
	if !ok {
		return apperr.NotFound("User")
	}
	u.PasswordHash = newHash
	return nil
}

func (f *fakeStore) DeleteUser(ctx context.Context, id string) error {
	delete(f.users, id)
	return nil
}

func (f *fakeStore) RecordLoginAttempt(ctx context.Context, attempt *LoginAttempt) error {
	f.attempts = append(f.attempts, attempt)
	return nil
}

func (f *fakeStore) GetUsersBatch(ctx context.Context, ids []string) ([]*User, error) {
	var out []*User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchUsers(ctx context.Context, filter string) ([]*User, error) {
	var out []*User
	for _, u := range f.users {
		if u.DisplayName == filter || u.ID == filter {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeLimiter struct {
	limited  bool
	failures int
}

func (f *fakeLimiter) ShouldLimit(ctx context.Context, username, ip string) (bool, error) {
	return f.limited, nil
}

func (f *fakeLimiter) RecordFailure(ctx context.Context, username, ip string) error {
	f.failures++
	return nil
}

type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateSessionToken(userID string, ttl time.Duration) (string, error) {
	return "token-for-" + userID, nil
}

func newTestService(store *fakeStore, limiter *fakeLimiter) *Service {
	return NewService(store, limiter, fakeTokenIssuer{}, 128, 30*24*time.Hour, discardLogger())
}

func seedUser(t *testing.T, store *fakeStore, id, password string) {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	store.users[id] = &User{ID: id, DisplayName: id, PasswordHash: hash}
}

func TestLogin_Success(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice", "correct horse battery staple")
	service := newTestService(store, &fakeLimiter{})

	token, user, err := service.Login(context.Background(), "alice", "correct horse battery staple", "1.2.3.4")
	require.NoError(t, err)
	assert.Equal(t, "token-for-alice", token)
	assert.Equal(t, "alice", user.ID)
	require.Len(t, store.attempts, 1)
	assert.True(t, store.attempts[0].Success)
}

func TestLogin_WrongPassword(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice", "correct horse battery staple")
	limiter := &fakeLimiter{}
	service := newTestService(store, limiter)

	_, _, err := service.Login(context.Background(), "alice", "wrong", "1.2.3.4")
	require.Error(t, err)
	assert.Equal(t, 1, limiter.failures)
	require.Len(t, store.attempts, 1)
	assert.False(t, store.attempts[0].Success)
}

func TestLogin_UnknownUserStillRunsComparison(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, &fakeLimiter{})

	_, _, err := service.Login(context.Background(), "ghost", "whatever", "1.2.3.4")
	require.Error(t, err)
	require.Len(t, store.attempts, 1)
	assert.False(t, store.attempts[0].Success)
}

func TestLogin_PublicUserRejected(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, &fakeLimiter{})

	_, _, err := service.Login(context.Background(), "public", "anything", "1.2.3.4")
	require.Error(t, err)
	assert.Empty(t, store.attempts)
}

func TestLogin_RateLimited(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice", "correct horse battery staple")
	service := newTestService(store, &fakeLimiter{limited: true})

	_, _, err := service.Login(context.Background(), "alice", "correct horse battery staple", "1.2.3.4")
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 429, appErr.HTTPStatus)
	assert.Empty(t, store.attempts)
}

func TestLogin_OverlongPasswordAlwaysFails(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "alice", "correct horse battery staple")
	service := newTestService(store, &fakeLimiter{})

	overlong := make([]byte, 200)
	for i := range overlong {
		overlong[i] = 'a'
	}

	_, _, err := service.Login(context.Background(), "alice", string(overlong), "1.2.3.4")
	require.Error(t, err)
	require.Len(t, store.attempts, 1)
	assert.False(t, store.attempts[0].Success)
}

func TestCreateAccount_LowercasesID(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, &fakeLimiter{})

	user, err := service.CreateAccount(context.Background(), "ALICE", "Alice", "some password")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.ID)
	assert.Contains(t, store.users, "alice")
}

func TestCreateAccount_RejectsInvalidID(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, &fakeLimiter{})

	_, err := service.CreateAccount(context.Background(), "has a space", "Name", "password")
	require.Error(t, err)
}

func TestUpdateSettings_RejectsOversize(t *testing.T) {
	store := newFakeStore()
	store.users["alice"] = &User{ID: "alice"}
	service := newTestService(store, &fakeLimiter{})

	oversized := make([]byte, MaxSettingsBytes+1)
	err := service.UpdateSettings(context.Background(), "alice", oversized)
	require.Error(t, err)
}

func TestSearchUsers_RejectsShortFilter(t *testing.T) {
	store := newFakeStore()
	service := newTestService(store, &fakeLimiter{})

	_, err := service.SearchUsers(context.Background(), "a")
	require.Error(t, err)
	appErr := apperr.As(err)
	require.NotNil(t, appErr)
	assert.Equal(t, 403, appErr.HTTPStatus)
}
