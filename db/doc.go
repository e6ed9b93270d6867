// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema and seeds the party registry.

Four tables:

  - party: registered lists (seeded, never mutated here)
  - voting_submission: the append-only vote ledger
  - calculation: immutable calculation headers
  - calculation_result: per-party rows owned by their calculation

The DDL is portable across PostgreSQL and SQLite; primary keys are
application-generated UUIDs and timestamps are written by the caller.
*/
package db
