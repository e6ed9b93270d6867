// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from CLI flags and environment
variables.

Flags take precedence over environment variables:

  - -p / PORT: server port (default 5000)
  - -d / DATABASE_URL: database connection string (required)
  - -t / DATABASE_TYPE: sqlite or postgres (default sqlite)
  - -no-rate-limit / DISABLE_RATE_LIMIT: turn off per-IP rate limits
*/
package cliparse
