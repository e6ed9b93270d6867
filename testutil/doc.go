// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package testutil provides shared helpers for tests: an in-memory SQLite
database with the full schema and seeded party registry, direct-insert
seed helpers, and HTTP request/response assertion utilities.
*/
package testutil
