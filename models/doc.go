// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

Types for parsing incoming JSON:

  - SubmitVotesRequest: lists ([]ListInput with name, votes)
  - CalculateAggregateRequest: total_seats, save_result (default true)

# Response Types

Types for JSON responses:

  - SubmitVotesResponse: message, submission_ids, total_submissions
  - AggregatedVotesResponse: total_submissions, aggregated_parties, total_votes
  - CalculationResponse: total_seats, total_votes, results,
    calculation_id, manual_tiebreak_required, tied_parties
  - ClearSubmissionsResponse: message, deleted_count
  - CalculationHistoryItem: id, timestamp, totals, results
  - StatsResponse: table row counts, most recent calculation
  - HealthResponse: status, service
  - ErrorResponse: error, message

# Domain Types

  - Party: registered political list (id, unique name)
  - ListResult: per-party (name, votes, seats) triple used in both
    calculation responses and history items

# Constants

Database types:

	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
*/
package models
