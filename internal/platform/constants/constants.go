// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, cache key prefixes and user-facing
labels that are shared between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Cache Taxonomy: Query-key prefixes and Redis key prefixes.
  - Labels: Sentinel bucket names shown by the dashboard.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "impulsa-dashboard"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	// Local-mode admin pages aggregate the whole upstream listing, hence the generous value.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 55 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// SessionCleanupInterval is how often idle dashboard sessions and cache entries are evicted.
	SessionCleanupInterval = 1 * time.Minute
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	HeaderXRequestID     = "X-Request-ID"
	HeaderXRealIP        = "X-Real-IP"
	HeaderXForwardedFor  = "X-Forwarded-For"
	HeaderOrigin         = "Origin"
	HeaderAuthorization  = "Authorization"
	HeaderContentType    = "Content-Type"
	ContentTypeJSON      = "application/json"
	ContentTypeJSONUTF8  = "application/json; charset=utf-8"
	AuthorizationBearer  = "bearer"
	AuthorizationPrefix  = "Bearer "
	DefaultUpstreamAgent = AppName + "/" + AppVersion
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldStatus  = "status"
	FieldChecks  = "checks"
)

// # Query Cache Taxonomy

const (
	// CachePrefixInitiatives scopes every cached initiative listing (owner lists and admin pages).
	CachePrefixInitiatives = "initiatives"

	// CachePrefixPostulations scopes every cached joined postulation listing.
	CachePrefixPostulations = "postulations"
)

// # Redis Prefixes

const (
	// RedisPrefixApplied stores the "user already applied" flags: applied:{userID}:{initiativeID}.
	RedisPrefixApplied = "applied:"
)

// # Dashboard Labels

const (
	// LabelUncategorized is the bucket for records whose group value is neither string nor number.
	LabelUncategorized = "Sin categoría"

	// LabelNoSkill is the inner bucket for records without a general skill.
	LabelNoSkill = "Sin Habilidad Especificada"
)

// # Navigation Targets

const (
	// RouteMyInitiatives is where the UI lands after an initiative is deleted.
	RouteMyInitiatives = "/initiatives/mine"
)
