// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/dhondt-server/middleware"
	"github.com/danielhkuo/dhondt-server/models"
	"github.com/danielhkuo/dhondt-server/store"
)

type SubmissionsHandler struct {
	st *store.Store
}

func NewSubmissionsHandler(st *store.Store) *SubmissionsHandler {
	return &SubmissionsHandler{st: st}
}

// storageError maps store sentinels to status codes shared by every
// handler: validation problems are 400, unknown references 404, and
// driver failures 503 (retryable for the caller).
func storageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidVotes), errors.Is(err, store.ErrPartyNotFound):
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrCalculationNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrUnavailable):
		slog.Error("storage unavailable", "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, "Database operation failed")
	default:
		slog.Error("unexpected error", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parseLimit reads an optional positive ?limit= query parameter.
func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	return limit, nil
}

// SubmitVotes handles POST /submit-votes
// Stores one ledger row per list for later aggregation; the whole
// batch succeeds or fails together.
func (h *SubmissionsHandler) SubmitVotes(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitVotesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if len(req.Lists) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "lists cannot be empty")
		return
	}

	ids, err := h.st.AppendSubmissions(r.Context(), req.Lists)
	if err != nil {
		storageError(w, err)
		return
	}

	slog.Info("votes submitted", "parties", len(ids))

	middleware.JSONResponse(w, http.StatusCreated, models.SubmitVotesResponse{
		Message:          fmt.Sprintf("Successfully submitted votes for %d parties", len(ids)),
		SubmissionIDs:    ids,
		TotalSubmissions: len(ids),
	})
}

// GetVotingSubmissions handles GET /voting-submissions
// Returns stored submissions, newest first (default limit 100).
func (h *SubmissionsHandler) GetVotingSubmissions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 100)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	subs, err := h.st.Submissions(r.Context(), limit)
	if err != nil {
		storageError(w, err)
		return
	}

	items := make([]models.VotingSubmissionItem, 0, len(subs))
	for _, s := range subs {
		items = append(items, models.VotingSubmissionItem{
			ID:          s.ID,
			PartyID:     s.PartyID,
			PartyName:   s.PartyName,
			Votes:       s.Votes,
			SubmittedAt: s.SubmittedAt,
		})
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}

// GetAggregatedVotes handles GET /aggregated-votes
// Returns the per-party vote totals without running seat allocation.
func (h *SubmissionsHandler) GetAggregatedVotes(w http.ResponseWriter, r *http.Request) {
	totals, count, err := h.st.AggregatedVotes(r.Context())
	if err != nil {
		storageError(w, err)
		return
	}

	parties := make([]models.ListResult, 0, len(totals))
	var totalVotes int64
	for _, pt := range totals {
		parties = append(parties, models.ListResult{Name: pt.PartyName, Votes: pt.Votes})
		totalVotes += pt.Votes
	}

	middleware.JSONResponse(w, http.StatusOK, models.AggregatedVotesResponse{
		TotalSubmissions:  count,
		AggregatedParties: parties,
		TotalVotes:        totalVotes,
	})
}

// ClearSubmissions handles DELETE /clear-submissions
// Removes every pending submission atomically.
func (h *SubmissionsHandler) ClearSubmissions(w http.ResponseWriter, r *http.Request) {
	count, err := h.st.ClearSubmissions(r.Context())
	if err != nil {
		storageError(w, err)
		return
	}

	slog.Info("submissions cleared", "count", count)

	middleware.JSONResponse(w, http.StatusOK, models.ClearSubmissionsResponse{
		Message:      fmt.Sprintf("Successfully cleared %d voting submissions", count),
		DeletedCount: count,
	})
}
