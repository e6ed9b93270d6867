// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines the HTTP routes using Go 1.22+ pattern routing.

Every route is wrapped with request-ID propagation, request logging,
and a per-endpoint-class rate limit (calculate/save/history/health
classes, disabled entirely via config for tests).
*/
package router
