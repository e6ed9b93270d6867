// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// Database type constants
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
)

// Request types

type ListInput struct {
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
}

type SubmitVotesRequest struct {
	Lists []ListInput `json:"lists"`
}

// SaveResult defaults to true when omitted: calculations are recorded
// unless the caller explicitly opts out.
type CalculateAggregateRequest struct {
	TotalSeats int   `json:"total_seats"`
	SaveResult *bool `json:"save_result"`
}

// Response types

type ListResult struct {
	Name  string `json:"name"`
	Votes int64  `json:"votes"`
	Seats int    `json:"seats"`
}

type SubmitVotesResponse struct {
	Message          string   `json:"message"`
	SubmissionIDs    []string `json:"submission_ids"`
	TotalSubmissions int      `json:"total_submissions"`
}

type VotingSubmissionItem struct {
	ID          string    `json:"id"`
	PartyID     string    `json:"party_id"`
	PartyName   string    `json:"party_name"`
	Votes       int64     `json:"votes"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type AggregatedVotesResponse struct {
	TotalSubmissions  int          `json:"total_submissions"`
	AggregatedParties []ListResult `json:"aggregated_parties"`
	TotalVotes        int64        `json:"total_votes"`
}

type CalculationResponse struct {
	TotalSeats             int          `json:"total_seats"`
	TotalVotes             int64        `json:"total_votes"`
	Results                []ListResult `json:"results"`
	CalculationID          *string      `json:"calculation_id"`
	ManualTiebreakRequired bool         `json:"manual_tiebreak_required"`
	TiedParties            []string     `json:"tied_parties,omitempty"`
}

type ClearSubmissionsResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deleted_count"`
}

type CalculationHistoryItem struct {
	ID                     string       `json:"id"`
	Timestamp              time.Time    `json:"timestamp"`
	TotalSeats             int          `json:"total_seats"`
	TotalVotes             int64        `json:"total_votes"`
	ManualTiebreakRequired bool         `json:"manual_tiebreak_required"`
	Results                []ListResult `json:"results"`
}

type StatsResponse struct {
	TotalParties          int        `json:"total_parties"`
	TotalCalculations     int        `json:"total_calculations"`
	TotalResults          int        `json:"total_results"`
	TotalSubmissions      int        `json:"total_submissions"`
	MostRecentCalculation *time.Time `json:"most_recent_calculation"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

// Domain types

type Party struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
