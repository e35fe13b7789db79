// Copyright (c) 2026 Hellomouse. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sec"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/validate"
)

// dummyPassword is compared against the stored hash when the submitted
// password exceeds the configured maximum length, so hashing cost stays
// uniform regardless of input length.
const dummyPassword = "0000000000000000"

// RateLimiter is the narrow interface the login flow needs from the
// sliding-window admission check.
type RateLimiter interface {
	ShouldLimit(ctx context.Context, username, ip string) (bool, error)
	RecordFailure(ctx context.Context, username, ip string) error
}

// TokenIssuer mints the signed session cookie payload on successful login.
type TokenIssuer interface {
	GenerateSessionToken(userID string, timeToLive time.Duration) (string, error)
}

// Service implements account lookup, login, and the unauthenticated
// account-lifecycle primitives.
type Service struct {
	store             Store
	limiter           RateLimiter
	tokens            TokenIssuer
	maxPasswordLength int
	cookieTTL         time.Duration
	logger            *slog.Logger
}

// NewService constructs a new [Service].
func NewService(store Store, limiter RateLimiter, tokens TokenIssuer, maxPasswordLength int, cookieTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		store:             store,
		limiter:           limiter,
		tokens:            tokens,
		maxPasswordLength: maxPasswordLength,
		cookieTTL:         cookieTTL,
		logger:            logger,
	}
}

// Login implements the login flow: reject the public user, check the
// sliding-window rate limit before touching the password at all, verify
// the hash, append a login_attempts row regardless of outcome, and mint a
// session token on success.
func (s *Service) Login(ctx context.Context, username, password, ip string) (string, *User, error) {
	username = strings.ToLower(username)
	if username == constants.PublicUserID {
		return "", nil, apperr.Unauthorized("Invalid username or password")
	}

	limited, err := s.limiter.ShouldLimit(ctx, username, ip)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}
	if limited {
		return "", nil, apperr.RateLimited(0)
	}

	attemptPassword := password
	preMarkValid := true
	if len(password) > s.maxPasswordLength {
		attemptPassword = dummyPassword
		preMarkValid = false
	}

	hash, err := s.store.GetPasswordHash(ctx, username)
	if err != nil {
		return "", nil, err
	}

	matched := attemptPassword != "" && sec.CheckPasswordHash(attemptPassword, hash)
	success := preMarkValid && matched

	recordErr := s.store.RecordLoginAttempt(ctx, &LoginAttempt{
		Username:  username,
		IP:        ip,
		Success:   success,
		Timestamp: time.Now().UTC(),
	})
	if recordErr != nil {
		s.logger.Warn("login_attempt_record_failed", slog.Any("error", recordErr))
	}

	if !success {
		if err := s.limiter.RecordFailure(ctx, username, ip); err != nil {
			s.logger.Warn("login_rate_limit_record_failed", slog.Any("error", err))
		}
		return "", nil, apperr.Unauthorized("Invalid username or password")
	}

	user, err := s.store.GetUser(ctx, username)
	if err != nil {
		return "", nil, err
	}
	if user == nil {
		return "", nil, apperr.Unauthorized("Invalid username or password")
	}

	token, err := s.tokens.GenerateSessionToken(username, s.cookieTTL)
	if err != nil {
		return "", nil, apperr.Internal(err)
	}

	s.logger.Info("login_succeeded", slog.String("user_id", username))
	return token, user, nil
}

// CreateAccount inserts a brand-new account, lowercasing the id.
// This primitive performs no authorization check of its own — the calling
// surface (an admin CLI, out of scope here) is responsible for deciding
// who may invoke it.
func (s *Service) CreateAccount(ctx context.Context, id, displayName, plainPassword string) (*User, error) {
	id = strings.ToLower(id)

	v := &validate.Validator{}
	v.Custom(FieldID, !ValidID(id), "Must be lowercase letters, digits, or underscores, 24 characters or fewer")
	v.MaxLen(FieldDisplayName, displayName, MaxDisplayNameLength)
	if err := v.Err(); err != nil {
		return nil, err
	}

	hash, err := sec.HashPassword(plainPassword)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	user := &User{
		ID:           id,
		DisplayName:  displayName,
		Settings:     json.RawMessage("{}"),
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword replaces id's stored password hash. Like [CreateAccount],
// this is an unauthenticated store-level primitive.
func (s *Service) ChangePassword(ctx context.Context, id, newPlainPassword string) error {
	hash, err := sec.HashPassword(newPlainPassword)
	if err != nil {
		return apperr.Internal(err)
	}
	return s.store.ChangePassword(ctx, strings.ToLower(id), hash)
}

// GetUser returns id's full record, or [apperr.NotFound] if it does not exist.
func (s *Service) GetUser(ctx context.Context, id string) (*User, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

// UpdateSettings replaces callerID's settings blob, enforcing the size cap.
func (s *Service) UpdateSettings(ctx context.Context, callerID string, settings json.RawMessage) error {
	if len(settings) > MaxSettingsBytes {
		return apperr.ValidationError("Settings must be 1 MiB or smaller",
			apperr.FieldError{Field: FieldSettings, Message: "Too large"})
	}
	if !json.Valid(settings) {
		return apperr.ValidationError("Settings must be valid JSON",
			apperr.FieldError{Field: FieldSettings, Message: "Invalid JSON"})
	}
	return s.store.UpdateSettings(ctx, callerID, settings)
}

// GetUsersBatch returns every existing user among ids.
func (s *Service) GetUsersBatch(ctx context.Context, ids []string) ([]*User, error) {
	return s.store.GetUsersBatch(ctx, ids)
}

// SearchUsers returns users whose id or display name contains filter.
// filter shorter than [MinSearchFilterLength] is rejected.
func (s *Service) SearchUsers(ctx context.Context, filter string) ([]*User, error) {
	if len(filter) < MinSearchFilterLength {
		return nil, apperr.Forbidden("Filter must be at least 2 characters long")
	}
	return s.store.SearchUsers(ctx, filter)
}
