// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/dhondt-server/cliparse"
	"github.com/danielhkuo/dhondt-server/db"
	"github.com/danielhkuo/dhondt-server/models"
)

// SetupTestDB creates a fresh in-memory SQLite database with the full
// schema and the seeded party registry. Each call gets its own named
// shared-cache database, so tests are isolated from each other while
// every connection in the pool sees the same data.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	// Shared-cache in-memory SQLite tolerates exactly one writer.
	conn.SetMaxOpenConns(1)

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.SeedParties(conn); err != nil {
		t.Fatalf("Failed to seed parties: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         5000,
		DatabaseURL:  "file::memory:",
		DatabaseType: models.DatabaseSQLite,
		NoRateLimit:  true,
	}
}

// PartyID looks up a seeded party's ID by name
func PartyID(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()

	var id string
	if err := conn.QueryRow(`SELECT id FROM party WHERE name = $1`, name).Scan(&id); err != nil {
		t.Fatalf("Failed to look up party %q: %v", name, err)
	}
	return id
}

// AddSubmission inserts a ledger row directly and returns its ID
func AddSubmission(t *testing.T, conn *sql.DB, partyID string, votes int64) string {
	t.Helper()

	id := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO voting_submission (id, party_id, votes, submitted_at)
		VALUES ($1, $2, $3, $4)
	`, id, partyID, votes, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to insert test submission: %v", err)
	}
	return id
}

// SubmissionCount returns the number of pending ledger rows
func SubmissionCount(t *testing.T, conn *sql.DB) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM voting_submission`).Scan(&n); err != nil {
		t.Fatalf("Failed to count submissions: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
