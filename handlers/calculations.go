// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/danielhkuo/dhondt-server/dhondt"
	"github.com/danielhkuo/dhondt-server/middleware"
	"github.com/danielhkuo/dhondt-server/models"
	"github.com/danielhkuo/dhondt-server/store"
)

type CalculationsHandler struct {
	st *store.Store
}

func NewCalculationsHandler(st *store.Store) *CalculationsHandler {
	return &CalculationsHandler{st: st}
}

// CalculateAggregate handles POST /calculate-aggregate
// Runs the full allocation pipeline over the aggregated ledger: one
// snapshot read, the pure D'Hondt engine, and (unless opted out) one
// atomic calculation write.
func (h *CalculationsHandler) CalculateAggregate(w http.ResponseWriter, r *http.Request) {
	var req models.CalculateAggregateRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.TotalSeats <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "total_seats must be positive")
		return
	}

	totals, _, err := h.st.AggregatedVotes(r.Context())
	if err != nil {
		storageError(w, err)
		return
	}
	if len(totals) == 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "No voting submissions found. Please submit voting data first.")
		return
	}

	tally := dhondt.Tally{Votes: make(map[string]int64, len(totals))}
	names := make(map[string]string, len(totals))
	for _, pt := range totals {
		tally.Votes[pt.PartyID] = pt.Votes
		tally.TotalVotes += pt.Votes
		names[pt.PartyID] = pt.PartyName
	}

	res, err := dhondt.Allocate(req.TotalSeats, tally)
	if err != nil {
		// The engine only fails on validation problems; storage errors
		// were handled above.
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	results := make([]models.ListResult, 0, len(res.Results))
	for _, pr := range res.Results {
		results = append(results, models.ListResult{
			Name:  names[pr.PartyID],
			Votes: pr.Votes,
			Seats: pr.Seats,
		})
	}
	tiedNames := make([]string, 0, len(res.TiedParties))
	for _, id := range res.TiedParties {
		tiedNames = append(tiedNames, names[id])
	}
	sort.Strings(tiedNames)

	response := models.CalculationResponse{
		TotalSeats:             res.TotalSeats,
		TotalVotes:             res.TotalVotes,
		Results:                results,
		ManualTiebreakRequired: res.TieFallback,
		TiedParties:            tiedNames,
	}

	if req.SaveResult == nil || *req.SaveResult {
		rec := store.CalculationRecord{
			TotalSeats:  res.TotalSeats,
			TotalVotes:  res.TotalVotes,
			TieFallback: res.TieFallback,
		}
		for _, pr := range res.Results {
			rec.Results = append(rec.Results, store.ResultRecord{
				PartyID: pr.PartyID,
				Votes:   pr.Votes,
				Seats:   pr.Seats,
			})
		}

		id, err := h.st.WriteCalculation(r.Context(), rec)
		if err != nil {
			storageError(w, err)
			return
		}
		response.CalculationID = &id

		slog.Info("calculation saved",
			"calculation_id", id,
			"total_seats", res.TotalSeats,
			"total_votes", res.TotalVotes,
			"manual_tiebreak", res.TieFallback,
		)
	}

	if res.TieFallback {
		slog.Warn("manual tiebreak required", "parties", tiedNames)
	}

	middleware.JSONResponse(w, http.StatusOK, response)
}

// GetCalculationHistory handles GET /calculation-history
// Returns past calculations, most recent first (default limit 20).
func (h *CalculationsHandler) GetCalculationHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r, 20)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	recs, err := h.st.Calculations(r.Context(), limit)
	if err != nil {
		storageError(w, err)
		return
	}

	items := make([]models.CalculationHistoryItem, 0, len(recs))
	for _, rec := range recs {
		items = append(items, historyItem(rec))
	}

	middleware.JSONResponse(w, http.StatusOK, items)
}

// GetCalculation handles GET /calculations/{id}
func (h *CalculationsHandler) GetCalculation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "id is required")
		return
	}

	rec, err := h.st.CalculationByID(r.Context(), id)
	if err != nil {
		storageError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, historyItem(rec))
}

// GetStats handles GET /stats
func (h *CalculationsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.st.Stats(r.Context())
	if err != nil {
		storageError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, stats)
}

func historyItem(rec store.CalculationRecord) models.CalculationHistoryItem {
	results := make([]models.ListResult, 0, len(rec.Results))
	for _, r := range rec.Results {
		results = append(results, models.ListResult{Name: r.PartyName, Votes: r.Votes, Seats: r.Seats})
	}
	return models.CalculationHistoryItem{
		ID:                     rec.ID,
		Timestamp:              rec.CreatedAt,
		TotalSeats:             rec.TotalSeats,
		TotalVotes:             rec.TotalVotes,
		ManualTiebreakRequired: rec.TieFallback,
		Results:                results,
	}
}
