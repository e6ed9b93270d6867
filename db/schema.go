// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS. The DDL is kept
// portable across Postgres and SQLite: TEXT primary keys generated in
// the application, no serial columns, no NOW().
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Registered parties. Registration itself is an administrative action
-- outside this service; rows are seeded at startup and never renamed.
CREATE TABLE IF NOT EXISTS party (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL UNIQUE,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

-- Append-only vote ledger. Rows are only ever removed by the bulk
-- clear operation.
CREATE TABLE IF NOT EXISTS voting_submission (
    id TEXT PRIMARY KEY,
    party_id TEXT NOT NULL REFERENCES party(id) ON DELETE CASCADE,
    votes INTEGER NOT NULL CHECK (votes >= 0),
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_voting_submission_party_id ON voting_submission(party_id);
CREATE INDEX IF NOT EXISTS idx_voting_submission_submitted_at ON voting_submission(submitted_at);

-- Immutable calculation headers. tie_fallback records that a seat was
-- decided by the stable fallback order instead of the ranking rules.
CREATE TABLE IF NOT EXISTS calculation (
    id TEXT PRIMARY KEY,
    total_seats INTEGER NOT NULL CHECK (total_seats > 0),
    total_votes INTEGER NOT NULL CHECK (total_votes >= 0),
    tie_fallback INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calculation_created_at ON calculation(created_at);

-- Per-party rows owned by their calculation; cascade together.
CREATE TABLE IF NOT EXISTS calculation_result (
    calculation_id TEXT NOT NULL REFERENCES calculation(id) ON DELETE CASCADE,
    party_id TEXT NOT NULL REFERENCES party(id),
    votes INTEGER NOT NULL CHECK (votes >= 0),
    seats INTEGER NOT NULL CHECK (seats >= 0),
    PRIMARY KEY (calculation_id, party_id)
);

CREATE INDEX IF NOT EXISTS idx_calculation_result_party_id ON calculation_result(party_id);
`

// RegisteredParties is the fixed registry of lists this deployment
// accepts votes for.
var RegisteredParties = []string{
	"Lista A",
	"Lista B",
	"Lista C",
	"Lista D",
	"Lista E",
	"Lista F",
	"Lista G",
	"Lista H",
	"Lista I",
	"Lista J",
}

// SeedParties inserts the registered parties that are not already
// present. Existing rows keep their IDs, so reseeding on every startup
// is safe.
func SeedParties(db *sql.DB) error {
	for _, name := range RegisteredParties {
		_, err := db.Exec(`
			INSERT INTO party (id, name, created_at)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, uuid.NewString(), name, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to seed party %q: %w", name, err)
		}
	}

	return nil
}
