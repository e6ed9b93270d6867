// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/dhondt-server/models"
	"github.com/danielhkuo/dhondt-server/store"
	"github.com/danielhkuo/dhondt-server/testutil"
)

func seedVotes(t *testing.T, conn *sql.DB, votes map[string]int64) {
	t.Helper()
	for name, v := range votes {
		testutil.AddSubmission(t, conn, testutil.PartyID(t, conn, name), v)
	}
}

func seatsFor(resp models.CalculationResponse, name string) int {
	for _, r := range resp.Results {
		if r.Name == name {
			return r.Seats
		}
	}
	return -1
}

func TestCalculateAggregate(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{
		"Lista A": 1000,
		"Lista B": 900,
		"Lista C": 500,
		"Lista D": 100, // 4% of 2500, eligible but priced out
	})

	req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 10,
	}, nil)
	w := httptest.NewRecorder()
	h.CalculateAggregate(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.CalculationResponse
	testutil.AssertJSON(t, w, &resp)

	if resp.TotalSeats != 10 || resp.TotalVotes != 2500 {
		t.Errorf("unexpected header: %+v", resp)
	}
	want := map[string]int{"Lista A": 4, "Lista B": 4, "Lista C": 2, "Lista D": 0}
	for name, seats := range want {
		if got := seatsFor(resp, name); got != seats {
			t.Errorf("%s: expected %d seats, got %d", name, seats, got)
		}
	}
	if resp.ManualTiebreakRequired {
		t.Error("no unresolved tie expected")
	}
	if resp.CalculationID == nil {
		t.Error("expected calculation to be saved by default")
	}
}

func TestCalculateAggregate_BelowThresholdExcluded(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{
		"Lista A": 9800,
		"Lista B": 200, // 2% of 10000, under the 3% bar
	})

	req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 5,
	}, nil)
	w := httptest.NewRecorder()
	h.CalculateAggregate(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.CalculationResponse
	testutil.AssertJSON(t, w, &resp)
	if got := seatsFor(resp, "Lista A"); got != 5 {
		t.Errorf("Lista A: expected all 5 seats, got %d", got)
	}
	if got := seatsFor(resp, "Lista B"); got != 0 {
		t.Errorf("Lista B: expected 0 seats below threshold, got %d", got)
	}
}

func TestCalculateAggregate_ManualTiebreakSurfaced(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{
		"Lista A": 500,
		"Lista B": 500,
	})

	req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 1,
	}, nil)
	w := httptest.NewRecorder()
	h.CalculateAggregate(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.CalculationResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.ManualTiebreakRequired {
		t.Fatal("expected manual tiebreak flag for a dead heat")
	}
	if len(resp.TiedParties) != 2 {
		t.Errorf("expected both parties reported tied, got %v", resp.TiedParties)
	}
	// Exactly one party takes the contested seat, and the flag
	// survives into the saved record.
	if seatsFor(resp, "Lista A")+seatsFor(resp, "Lista B") != 1 {
		t.Errorf("seat total drifted: %+v", resp.Results)
	}

	var fallback int
	if err := conn.QueryRow(`SELECT tie_fallback FROM calculation WHERE id = $1`, *resp.CalculationID).Scan(&fallback); err != nil {
		t.Fatal(err)
	}
	if fallback != 1 {
		t.Error("tie fallback flag not persisted")
	}
}

func TestCalculateAggregate_SaveResultFalse(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{"Lista A": 100})

	save := false
	req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 3,
		SaveResult: &save,
	}, nil)
	w := httptest.NewRecorder()
	h.CalculateAggregate(w, req)

	testutil.AssertStatus(t, w, 200)

	var resp models.CalculationResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.CalculationID != nil {
		t.Error("expected no calculation ID when save_result is false")
	}

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM calculation`).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected nothing persisted, got %d calculations", n)
	}
}

func TestCalculateAggregate_InvalidSeats(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{"Lista A": 100})

	for _, seats := range []int{0, -3} {
		req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
			TotalSeats: seats,
		}, nil)
		w := httptest.NewRecorder()
		h.CalculateAggregate(w, req)
		testutil.AssertStatus(t, w, 400)
	}
}

func TestCalculateAggregate_NoSubmissions(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 10,
	}, nil)
	w := httptest.NewRecorder()
	h.CalculateAggregate(w, req)

	testutil.AssertStatus(t, w, 400)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Error != "No voting submissions found. Please submit voting data first." {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
}

func TestGetCalculationHistory(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{"Lista A": 100, "Lista B": 60})
	for i := 0; i < 2; i++ {
		req := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
			TotalSeats: 4,
		}, nil)
		h.CalculateAggregate(httptest.NewRecorder(), req)
	}

	req := testutil.MakeRequest("GET", "/calculation-history", nil, nil)
	w := httptest.NewRecorder()
	h.GetCalculationHistory(w, req)

	testutil.AssertStatus(t, w, 200)

	var items []models.CalculationHistoryItem
	testutil.AssertJSON(t, w, &items)
	if len(items) != 2 {
		t.Fatalf("expected 2 history entries, got %d", len(items))
	}
	// Re-running over an unchanged ledger yields identical allocations.
	if len(items[0].Results) != len(items[1].Results) {
		t.Errorf("history entries differ: %+v vs %+v", items[0].Results, items[1].Results)
	}
}

func TestGetCalculation(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	seedVotes(t, conn, map[string]int64{"Lista A": 100})
	calcReq := testutil.MakeRequest("POST", "/calculate-aggregate", models.CalculateAggregateRequest{
		TotalSeats: 3,
	}, nil)
	calcW := httptest.NewRecorder()
	h.CalculateAggregate(calcW, calcReq)

	var calcResp models.CalculationResponse
	testutil.AssertJSON(t, calcW, &calcResp)
	if calcResp.CalculationID == nil {
		t.Fatal("expected a saved calculation")
	}

	req := testutil.MakeRequest("GET", "/calculations/"+*calcResp.CalculationID, nil, nil)
	req.SetPathValue("id", *calcResp.CalculationID)
	w := httptest.NewRecorder()
	h.GetCalculation(w, req)

	testutil.AssertStatus(t, w, 200)

	var item models.CalculationHistoryItem
	testutil.AssertJSON(t, w, &item)
	if item.ID != *calcResp.CalculationID || item.TotalSeats != 3 {
		t.Errorf("unexpected record: %+v", item)
	}
}

func TestGetCalculation_NotFound(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	req := testutil.MakeRequest("GET", "/calculations/missing", nil, nil)
	req.SetPathValue("id", "missing")
	w := httptest.NewRecorder()
	h.GetCalculation(w, req)

	testutil.AssertStatus(t, w, 404)
}

func TestGetStats(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	defer conn.Close()
	h := NewCalculationsHandler(store.New(conn))

	req := testutil.MakeRequest("GET", "/stats", nil, nil)
	w := httptest.NewRecorder()
	h.GetStats(w, req)

	testutil.AssertStatus(t, w, 200)

	var stats models.StatsResponse
	testutil.AssertJSON(t, w, &stats)
	if stats.TotalParties != 10 {
		t.Errorf("expected 10 seeded parties, got %d", stats.TotalParties)
	}
}
