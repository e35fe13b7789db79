// Copyright (c) 2026 Hellomouse. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: session issuer and cookie configuration.

Using this package ensures magic strings and magic numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "hellomouse-apps-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting (HTTP-surface token bucket, layer 1 of the concurrency model)

const (
	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Login rate limiting (sliding window, layer 2)

const (
	// LoginAttemptLogCap is the maximum number of rows retained in the
	// append-only login_attempts table.
	LoginAttemptLogCap = 10000
)

// # Authentication / Session

const (
	// SessionCookieName is the name of the signed identity cookie.
	SessionCookieName = "session"

	// SessionCookiePath scopes the cookie to the whole API surface.
	SessionCookiePath = "/"

	// AuthIssuer is the standard 'iss' claim in the session token.
	AuthIssuer = "hellomouse-apps"

	// PublicUserID is the reserved principal used to authorize anonymous
	// reads explicitly granted via a board/playlist permission row.
	PublicUserID = "public"

	// SessionKeyFile is the on-disk location of the session-signing secret.
	SessionKeyFile = "./session-key"

	// SessionKeyLength is the number of random bytes persisted to SessionKeyFile.
	SessionKeyLength = 64
)

// # Redis key prefixes

const (
	// RedisPrefixLoginAttempt namespaces the sliding-window login rate
	// limit counters keyed by username or source IP.
	RedisPrefixLoginAttempt = "ratelimit:login:"
)

// # Job queue

const (
	// NotifyChannel is the Postgres NOTIFY channel signaled on every enqueue.
	NotifyChannel = "hellomouse_apps_site_update"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "msg"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaPublic = "public"
	SchemaBoard  = "board"
	SchemaMusic  = "music"
	SchemaSite   = "site"
)

// # HTTP Headers

const (
	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
)
