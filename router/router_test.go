// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/dhondt-server/middleware"
	"github.com/danielhkuo/dhondt-server/models"
	"github.com/danielhkuo/dhondt-server/testutil"
)

func TestHealthEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	mux := NewRouter(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/health", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.HealthResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != "healthy" || resp.Service != "dhondt-server" {
		t.Errorf("unexpected health body: %+v", resp)
	}
	if w.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request ID on the response")
	}
}

func TestRootEndpoint(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	mux := NewRouter(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, 200)
	if w.Body.String() != "dhondt-server API v1" {
		t.Errorf("unexpected root body: %q", w.Body.String())
	}
}

func TestMethodNotAllowed(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	mux := NewRouter(conn, testutil.GetTestConfig())

	req := testutil.MakeRequest("GET", "/submit-votes", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	testutil.AssertStatus(t, w, 405)
}

// TestFullVotingWorkflow drives the whole pipeline through the router:
// submit, inspect the aggregate, allocate, read history, fetch by ID,
// clear, and confirm the archive survives the clear.
func TestFullVotingWorkflow(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	mux := NewRouter(conn, testutil.GetTestConfig())

	// Two rounds of submissions for the same parties accumulate.
	for _, batch := range [][]models.ListInput{
		{{Name: "Lista A", Votes: 600}, {Name: "Lista B", Votes: 500}},
		{{Name: "Lista A", Votes: 400}, {Name: "Lista C", Votes: 500}},
	} {
		req := testutil.MakeRequest("POST", "/submit-votes", models.SubmitVotesRequest{Lists: batch}, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		testutil.AssertStatus(t, w, 201)
	}

	// Aggregate view before allocation.
	req := testutil.MakeRequest("GET", "/aggregated-votes", nil, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)

	var agg models.AggregatedVotesResponse
	testutil.AssertJSON(t, w, &agg)
	if agg.TotalVotes != 2000 || agg.TotalSubmissions != 4 {
		t.Fatalf("unexpected aggregate: %+v", agg)
	}
	if agg.AggregatedParties[0].Name != "Lista A" || agg.AggregatedParties[0].Votes != 1000 {
		t.Errorf("expected Lista A leading with 1000, got %+v", agg.AggregatedParties[0])
	}

	// Allocate 4 seats: quotients 1000, 500, 500, 500, 333... give
	// Lista A two and one each to B and C.
	req = testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{TotalSeats: 4}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)

	var calc models.CalculationResponse
	testutil.AssertJSON(t, w, &calc)
	seatSum := 0
	for _, r := range calc.Results {
		seatSum += r.Seats
		if r.Name == "Lista A" && r.Seats != 2 {
			t.Errorf("Lista A: expected 2 seats, got %d", r.Seats)
		}
	}
	if seatSum != 4 {
		t.Errorf("expected all 4 seats assigned, got %d", seatSum)
	}
	if calc.CalculationID == nil {
		t.Fatal("expected calculation to be saved")
	}

	// History lists the saved calculation.
	req = testutil.MakeRequest("GET", "/calculation-history", nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)

	var history []models.CalculationHistoryItem
	testutil.AssertJSON(t, w, &history)
	if len(history) != 1 || history[0].ID != *calc.CalculationID {
		t.Fatalf("unexpected history: %+v", history)
	}

	// Single-record fetch.
	req = testutil.MakeRequest("GET", "/calculations/"+*calc.CalculationID, nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)

	// Clear the ledger; the archived calculation must survive.
	req = testutil.MakeRequest("DELETE", "/clear-submissions", nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)

	var cleared models.ClearSubmissionsResponse
	testutil.AssertJSON(t, w, &cleared)
	if cleared.DeletedCount != 4 {
		t.Errorf("expected 4 submissions cleared, got %d", cleared.DeletedCount)
	}

	req = testutil.MakeRequest("GET", "/calculation-history", nil, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 200)
	testutil.AssertJSON(t, w, &history)
	if len(history) != 1 {
		t.Errorf("archive must survive a ledger clear, got %d records", len(history))
	}

	// A fresh allocation over the empty ledger is rejected.
	req = testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{TotalSeats: 4}, nil)
	w = httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	testutil.AssertStatus(t, w, 400)
}

func TestRateLimitEnforced(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()

	cfg := testutil.GetTestConfig()
	cfg.NoRateLimit = false
	mux := NewRouter(conn, cfg)

	// The calculate class allows a burst of 10 per client per minute.
	limited := false
	for i := 0; i < 15; i++ {
		req := testutil.MakeRequest("GET", "/aggregated-votes", nil, nil)
		req.RemoteAddr = "9.9.9.9:1000"
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		if w.Code == 429 {
			limited = true
			break
		}
	}
	if !limited {
		t.Error("expected the calculate endpoint class to rate limit a burst")
	}
}
