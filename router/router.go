// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/dhondt-server/cliparse"
	"github.com/danielhkuo/dhondt-server/handlers"
	"github.com/danielhkuo/dhondt-server/middleware"
	"github.com/danielhkuo/dhondt-server/models"
	"github.com/danielhkuo/dhondt-server/store"
)

// Per-endpoint-class rate limits, requests per minute per client IP.
const (
	calculateLimit = 10
	saveLimit      = 20
	historyLimit   = 30
	healthLimit    = 60
)

func NewRouter(dbConn *sql.DB, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	st := store.New(dbConn)

	// Initialize handlers
	submissionsHandler := handlers.NewSubmissionsHandler(st)
	calculationsHandler := handlers.NewCalculationsHandler(st)
	reportsHandler := handlers.NewReportsHandler(st)

	// One limiter per endpoint class; nil disables limiting.
	var calculate, save, history, health *middleware.RateLimiter
	if !cfg.NoRateLimit {
		calculate = middleware.NewRateLimiter(calculateLimit)
		save = middleware.NewRateLimiter(saveLimit)
		history = middleware.NewRateLimiter(historyLimit)
		health = middleware.NewRateLimiter(healthLimit)
	}

	wrap := func(rl *middleware.RateLimiter, h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithRequestID(middleware.WithLogging(rl.Wrap(h)))
	}

	// Health check
	mux.HandleFunc("GET /health", wrap(health, func(w http.ResponseWriter, r *http.Request) {
		middleware.JSONResponse(w, http.StatusOK, models.HealthResponse{
			Status:  "healthy",
			Service: "dhondt-server",
		})
	}))

	// Vote ledger
	mux.HandleFunc("POST /submit-votes", wrap(calculate, submissionsHandler.SubmitVotes))
	mux.HandleFunc("GET /voting-submissions", wrap(history, submissionsHandler.GetVotingSubmissions))
	mux.HandleFunc("GET /aggregated-votes", wrap(calculate, submissionsHandler.GetAggregatedVotes))
	mux.HandleFunc("DELETE /clear-submissions", wrap(save, submissionsHandler.ClearSubmissions))

	// Seat allocation
	mux.HandleFunc("POST /calculate-aggregate", wrap(calculate, calculationsHandler.CalculateAggregate))
	mux.HandleFunc("GET /calculation-history", wrap(history, calculationsHandler.GetCalculationHistory))
	mux.HandleFunc("GET /calculations/{id}", wrap(history, calculationsHandler.GetCalculation))
	mux.HandleFunc("GET /stats", wrap(history, calculationsHandler.GetStats))

	// Reports
	mux.HandleFunc("GET /download-report", wrap(history, reportsHandler.DownloadReport))
	mux.HandleFunc("GET /download-custom-report", wrap(history, reportsHandler.DownloadCustomReport))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("dhondt-server API v1"))
	})

	return mux
}
