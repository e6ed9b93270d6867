// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP cross-cutting concerns and JSON
helpers.

  - WithRequestID: X-Request-ID propagation (inbound header or UUID)
  - WithLogging: slog request/completion logging
  - RateLimiter: per-client-IP limits via golang.org/x/time/rate
  - CORS: cross-origin headers and preflight handling
  - JSONResponse / ErrorResponse / ParseJSONBody: JSON plumbing
  - GetClientIP: X-Forwarded-For / X-Real-IP / RemoteAddr resolution
*/
package middleware
