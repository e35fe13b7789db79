// Copyright (c) 2026 Hellomouse. All rights reserved.

// Package middleware provides the HTTP middleware chain for the API server.
//
// # Architecture
//
// Middleware intercepts incoming HTTP requests to apply global policies
// before they reach the domain handlers. This includes cross-cutting concerns
// like logging, authentication, rate limiting, and CORS.
package middleware

import (
	"context"
	"net/http"

	"github.com/hellomouse/hellomouse-apps-api/internal/platform/apperr"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/constants"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/ctxkey"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/respond"
	"github.com/hellomouse/hellomouse-apps-api/internal/platform/sec"
)

// TokenVerifier defines the interface needed to verify session tokens in
// middleware.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from the session
// token implementation, allowing mocks during unit testing.
type TokenVerifier interface {
	VerifyToken(tokenStr string) (*sec.AuthClaims, error)
}

// Authenticate extracts and verifies the signed session cookie.
//
// # Flow
//  1. Look for the session cookie.
//  2. If absent, request proceeds as anonymous (identity "public").
//  3. If present, parse and verify the JWT via [TokenVerifier].
//  4. Inject [*sec.AuthClaims] into the request context for downstream use.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			cookie, err := request.Cookie(constants.SessionCookieName)

			// ── 1. Anonymous access ────────────────────────────────────────
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token verification ──────────────────────────────────────
			claims, err := verifier.VerifyToken(cookie.Value)
			if err != nil {
				respond.Error(writer, request, apperr.Unauthorized("Invalid or expired session"))
				return
			}

			// ── 3. Context injection ───────────────────────────────────────
			ctx := context.WithValue(request.Context(), ctxkey.KeyUser, claims)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		claims := GetUser(request.Context())
		if claims == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}

// GetUser retrieves the [*sec.AuthClaims] from the [context.Context].
//
// Returns nil if the caller is anonymous.
func GetUser(ctx context.Context) *sec.AuthClaims {
	claims, ok := ctx.Value(ctxkey.KeyUser).(*sec.AuthClaims)
	if !ok {
		return nil
	}
	return claims
}

// CallerID returns the authenticated user id, or constants.PublicUserID if
// the caller is anonymous. Every board/pin/playlist read path is gated by a
// permission row keyed on this identity, so the public user can be granted
// explicit anonymous access.
func CallerID(ctx context.Context) string {
	if claims := GetUser(ctx); claims != nil {
		return claims.UserID
	}
	return constants.PublicUserID
}
