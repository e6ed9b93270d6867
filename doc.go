// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the D'Hondt seat allocation
API server.

The service collects incremental vote submissions for registered
parties, aggregates them on demand, and distributes a requested seat
count using the D'Hondt highest-averages method with a 3% eligibility
threshold. Every calculation is persisted as an immutable record and
can be retrieved later or exported as an xlsx report.

# Starting the Server

The server requires a database URL via environment or CLI flags:

	DATABASE_URL=file:dhondt.db go run main.go

Or with flags:

	go run main.go -p 5000 -d "postgres://..." -t postgres

# Configuration

  - DATABASE_URL (-d): connection string (required)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - PORT (-p): server port (default: 5000)
  - DISABLE_RATE_LIMIT (-no-rate-limit): turn off per-IP rate limits

A .env file in the working directory is loaded if present.

# Architecture

The server uses a handler-based architecture with dependency injection:

  - dhondt: the pure allocation engine (aggregation, threshold,
    quotient ranking, seat assignment)
  - store: transactional persistence for the vote ledger and the
    calculation archive
  - handlers: HTTP request handlers (submissions, calculations, reports)
  - router: route definitions using Go 1.22+ routing
  - middleware: request IDs, logging, rate limiting, CORS, JSON helpers
  - models: request/response types
  - db: schema creation and party registry seeding
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
