// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/dhondt-server/middleware"
	"github.com/danielhkuo/dhondt-server/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportsHandler struct {
	st *store.Store
}

func NewReportsHandler(st *store.Store) *ReportsHandler {
	return &ReportsHandler{st: st}
}

// DownloadReport handles GET /download-report
// Streams a workbook covering the whole database: calculation history,
// detailed results, per-party performance, the pending ledger, and
// summary statistics.
func (h *ReportsHandler) DownloadReport(w http.ResponseWriter, r *http.Request) {
	recs, err := h.st.Calculations(r.Context(), 0)
	if err != nil {
		storageError(w, err)
		return
	}
	subs, err := h.st.Submissions(r.Context(), 0)
	if err != nil {
		storageError(w, err)
		return
	}
	stats, err := h.st.Stats(r.Context())
	if err != nil {
		storageError(w, err)
		return
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeHistorySheet(f, "Calculation History", recs, true); err != nil {
		slog.Error("report generation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate report")
		return
	}
	writeResultsSheet(f, "Detailed Results", recs)
	writePartySheet(f, "Party Performance", recs)
	writeSubmissionsSheet(f, "Voting Submissions", subs)

	f.NewSheet("Statistics")
	statRows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Parties", stats.TotalParties},
		{"Total Calculations", stats.TotalCalculations},
		{"Total Results", stats.TotalResults},
		{"Pending Submissions", stats.TotalSubmissions},
	}
	if stats.MostRecentCalculation != nil {
		statRows = append(statRows, []interface{}{"Most Recent Calculation", stats.MostRecentCalculation.Format(time.RFC3339)})
	}
	for i, row := range statRows {
		f.SetSheetRow("Statistics", fmt.Sprintf("A%d", i+1), &row)
	}

	filename := fmt.Sprintf("dhondt_comprehensive_report_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	serveWorkbook(w, f, filename)
}

// DownloadCustomReport handles GET /download-custom-report
// Optional filters: start_date / end_date (YYYY-MM-DD) on calculation
// timestamps, and party (exact name) on result rows.
func (h *ReportsHandler) DownloadCustomReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var start, end time.Time
	var err error
	if raw := q.Get("start_date"); raw != "" {
		start, err = time.Parse("2006-01-02", raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "start_date must be YYYY-MM-DD")
			return
		}
	}
	if raw := q.Get("end_date"); raw != "" {
		end, err = time.Parse("2006-01-02", raw)
		if err != nil {
			middleware.ErrorResponse(w, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
			return
		}
		end = end.Add(24 * time.Hour) // inclusive end day
	}
	party := strings.TrimSpace(q.Get("party"))

	recs, err := h.st.Calculations(r.Context(), 0)
	if err != nil {
		storageError(w, err)
		return
	}

	filtered := make([]store.CalculationRecord, 0, len(recs))
	for _, rec := range recs {
		if !start.IsZero() && rec.CreatedAt.Before(start) {
			continue
		}
		if !end.IsZero() && !rec.CreatedAt.Before(end) {
			continue
		}
		if party != "" {
			kept := rec.Results[:0:0]
			for _, pr := range rec.Results {
				if pr.PartyName == party {
					kept = append(kept, pr)
				}
			}
			if len(kept) == 0 {
				continue
			}
			rec.Results = kept
		}
		filtered = append(filtered, rec)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeHistorySheet(f, "Calculation History", filtered, true); err != nil {
		slog.Error("custom report generation failed", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to generate custom report")
		return
	}
	writeResultsSheet(f, "Detailed Results", filtered)

	var suffix string
	if party != "" {
		suffix += "_" + strings.ReplaceAll(party, " ", "_")
	}
	if q.Get("start_date") != "" || q.Get("end_date") != "" {
		from, to := q.Get("start_date"), q.Get("end_date")
		if from == "" {
			from = "start"
		}
		if to == "" {
			to = "end"
		}
		suffix += fmt.Sprintf("_%s_to_%s", from, to)
	}
	filename := fmt.Sprintf("dhondt_custom_report%s_%s.xlsx", suffix, time.Now().UTC().Format("20060102_150405"))
	serveWorkbook(w, f, filename)
}

// writeHistorySheet renames the default sheet when primary is set so
// the workbook has no stray "Sheet1".
func writeHistorySheet(f *excelize.File, sheet string, recs []store.CalculationRecord, primary bool) error {
	if primary {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	} else {
		f.NewSheet(sheet)
	}

	header := []interface{}{"Calculation ID", "Timestamp", "Total Seats", "Total Votes", "Parties", "Parties With Seats", "Manual Tiebreak"}
	f.SetSheetRow(sheet, "A1", &header)

	for i, rec := range recs {
		withSeats := 0
		for _, pr := range rec.Results {
			if pr.Seats > 0 {
				withSeats++
			}
		}
		row := []interface{}{
			rec.ID,
			rec.CreatedAt.Format(time.RFC3339),
			rec.TotalSeats,
			rec.TotalVotes,
			len(rec.Results),
			withSeats,
			rec.TieFallback,
		}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}
	return nil
}

func writeResultsSheet(f *excelize.File, sheet string, recs []store.CalculationRecord) {
	f.NewSheet(sheet)
	header := []interface{}{"Calculation ID", "Timestamp", "Party", "Votes", "Seats"}
	f.SetSheetRow(sheet, "A1", &header)

	row := 2
	for _, rec := range recs {
		for _, pr := range rec.Results {
			values := []interface{}{rec.ID, rec.CreatedAt.Format(time.RFC3339), pr.PartyName, pr.Votes, pr.Seats}
			f.SetSheetRow(sheet, fmt.Sprintf("A%d", row), &values)
			row++
		}
	}
}

func writePartySheet(f *excelize.File, sheet string, recs []store.CalculationRecord) {
	type perf struct {
		calculations int
		totalVotes   int64
		totalSeats   int
		bestSeats    int
	}
	byParty := make(map[string]*perf)
	for _, rec := range recs {
		for _, pr := range rec.Results {
			p, ok := byParty[pr.PartyName]
			if !ok {
				p = &perf{}
				byParty[pr.PartyName] = p
			}
			p.calculations++
			p.totalVotes += pr.Votes
			p.totalSeats += pr.Seats
			if pr.Seats > p.bestSeats {
				p.bestSeats = pr.Seats
			}
		}
	}

	names := make([]string, 0, len(byParty))
	for name := range byParty {
		names = append(names, name)
	}
	sort.Strings(names)

	f.NewSheet(sheet)
	header := []interface{}{"Party", "Calculations", "Total Votes", "Total Seats Won", "Best Seats"}
	f.SetSheetRow(sheet, "A1", &header)
	for i, name := range names {
		p := byParty[name]
		row := []interface{}{name, p.calculations, p.totalVotes, p.totalSeats, p.bestSeats}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}
}

func writeSubmissionsSheet(f *excelize.File, sheet string, subs []store.Submission) {
	f.NewSheet(sheet)
	header := []interface{}{"Submission ID", "Party", "Votes", "Submitted At"}
	f.SetSheetRow(sheet, "A1", &header)
	for i, s := range subs {
		row := []interface{}{s.ID, s.PartyName, s.Votes, s.SubmittedAt.Format(time.RFC3339)}
		f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}
}

func serveWorkbook(w http.ResponseWriter, f *excelize.File, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if _, err := f.WriteTo(w); err != nil {
		// Headers are already out; all we can do is log.
		slog.Error("failed to stream report", "error", err, "filename", filename)
		return
	}

	slog.Info("report served", "filename", filename)
}
