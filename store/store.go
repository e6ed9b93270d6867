// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/dhondt-server/models"
)

var (
	// ErrPartyNotFound: a referenced party is not in the registry.
	ErrPartyNotFound = errors.New("party not found")
	// ErrCalculationNotFound: no calculation with the given ID.
	ErrCalculationNotFound = errors.New("calculation not found")
	// ErrInvalidVotes: a submission carried a negative vote count.
	ErrInvalidVotes = errors.New("votes must be non-negative")
	// ErrUnavailable wraps driver failures; callers may retry.
	ErrUnavailable = errors.New("storage unavailable")
)

// unavailable tags a driver error as retryable for the caller.
func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnavailable, op, err)
}

// Store is the persistence boundary for the vote ledger and the
// calculation archive. All mutation goes through it, each call in its
// own transaction or single statement, so the allocation engine stays
// free of storage concerns.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Submission is one ledger row joined with its party name.
type Submission struct {
	ID          string
	PartyID     string
	PartyName   string
	Votes       int64
	SubmittedAt time.Time
}

// PartyTotal is one row of the aggregated tally.
type PartyTotal struct {
	PartyID   string
	PartyName string
	Votes     int64
}

// ResultRecord is one per-party row of a calculation.
type ResultRecord struct {
	PartyID   string
	PartyName string
	Votes     int64
	Seats     int
}

// CalculationRecord is a calculation header with its result rows.
type CalculationRecord struct {
	ID          string
	TotalSeats  int
	TotalVotes  int64
	TieFallback bool
	CreatedAt   time.Time
	Results     []ResultRecord
}

// ResolveParty looks a party up by its display name.
func (s *Store) ResolveParty(ctx context.Context, name string) (models.Party, error) {
	var p models.Party
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at FROM party WHERE name = $1
	`, name).Scan(&p.ID, &p.Name, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return models.Party{}, fmt.Errorf("%w: %q", ErrPartyNotFound, name)
	}
	if err != nil {
		return models.Party{}, unavailable("resolve party", err)
	}
	return p, nil
}

// AppendSubmissions inserts one ledger row per input as a single
// transaction: either every submission is recorded or none is. Inputs
// are validated (registered party, non-negative votes) before any row
// is written.
func (s *Store) AppendSubmissions(ctx context.Context, lists []models.ListInput) ([]string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin append", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	ids := make([]string, 0, len(lists))

	for _, in := range lists {
		name := strings.TrimSpace(in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: empty party name", ErrPartyNotFound)
		}
		if in.Votes < 0 {
			return nil, fmt.Errorf("%w: party %q submitted %d", ErrInvalidVotes, name, in.Votes)
		}

		var partyID string
		err := tx.QueryRowContext(ctx, `
			SELECT id FROM party WHERE name = $1
		`, name).Scan(&partyID)
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("%w: %q", ErrPartyNotFound, name)
		}
		if err != nil {
			return nil, unavailable("resolve party", err)
		}

		id := uuid.NewString()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO voting_submission (id, party_id, votes, submitted_at)
			VALUES ($1, $2, $3, $4)
		`, id, partyID, in.Votes, now)
		if err != nil {
			return nil, unavailable("insert submission", err)
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit append", err)
	}
	return ids, nil
}

// Submissions returns ledger rows newest first. limit <= 0 means no limit.
func (s *Store) Submissions(ctx context.Context, limit int) ([]Submission, error) {
	query := `
		SELECT v.id, v.party_id, p.name, v.votes, v.submitted_at
		FROM voting_submission v
		JOIN party p ON p.id = v.party_id
		ORDER BY v.submitted_at DESC, v.id
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, unavailable("query submissions", err)
	}
	defer rows.Close()

	subs := []Submission{}
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.PartyID, &sub.PartyName, &sub.Votes, &sub.SubmittedAt); err != nil {
			return nil, unavailable("scan submission", err)
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate submissions", err)
	}
	return subs, nil
}

// AggregatedVotes reduces the pending ledger to one total per party,
// ordered votes descending then name ascending, plus the number of
// submissions aggregated. The reduction is a single statement, so a
// concurrent clear is either fully visible or not at all - a tally can
// never mix rows from before and after a clear.
func (s *Store) AggregatedVotes(ctx context.Context) ([]PartyTotal, int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, SUM(v.votes), COUNT(v.id)
		FROM voting_submission v
		JOIN party p ON p.id = v.party_id
		GROUP BY p.id, p.name
		ORDER BY SUM(v.votes) DESC, p.name
	`)
	if err != nil {
		return nil, 0, unavailable("aggregate votes", err)
	}
	defer rows.Close()

	totals := []PartyTotal{}
	count := 0
	for rows.Next() {
		var pt PartyTotal
		var n int
		if err := rows.Scan(&pt.PartyID, &pt.PartyName, &pt.Votes, &n); err != nil {
			return nil, 0, unavailable("scan aggregate", err)
		}
		totals = append(totals, pt)
		count += n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, unavailable("iterate aggregate", err)
	}
	return totals, count, nil
}

// ClearSubmissions deletes every pending ledger row and reports how
// many were removed.
func (s *Store) ClearSubmissions(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM voting_submission`)
	if err != nil {
		return 0, unavailable("clear submissions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable("count cleared", err)
	}
	return int(n), nil
}

// WriteCalculation persists one calculation header plus one result row
// per party with nonzero votes, atomically. Parties with zero recorded
// votes are skipped; ineligible parties with votes are kept with zero
// seats. Returns the new calculation's ID.
func (s *Store) WriteCalculation(ctx context.Context, rec CalculationRecord) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", unavailable("begin calculation", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	fallback := 0
	if rec.TieFallback {
		fallback = 1
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO calculation (id, total_seats, total_votes, tie_fallback, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, id, rec.TotalSeats, rec.TotalVotes, fallback, time.Now().UTC())
	if err != nil {
		return "", unavailable("insert calculation", err)
	}

	for _, r := range rec.Results {
		if r.Votes == 0 {
			continue
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO calculation_result (calculation_id, party_id, votes, seats)
			VALUES ($1, $2, $3, $4)
		`, id, r.PartyID, r.Votes, r.Seats)
		if err != nil {
			return "", unavailable("insert calculation result", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", unavailable("commit calculation", err)
	}
	return id, nil
}

// Calculations returns past calculations newest first, each with its
// result rows ordered seats descending then votes descending (display
// order, distinct from the allocation tiebreak). limit <= 0 means no
// limit.
func (s *Store) Calculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	query := `
		SELECT id, total_seats, total_votes, tie_fallback, created_at
		FROM calculation
		ORDER BY created_at DESC, id
	`
	var rows *sql.Rows
	var err error
	if limit > 0 {
		rows, err = s.db.QueryContext(ctx, query+` LIMIT $1`, limit)
	} else {
		rows, err = s.db.QueryContext(ctx, query)
	}
	if err != nil {
		return nil, unavailable("query calculations", err)
	}
	defer rows.Close()

	recs := []CalculationRecord{}
	for rows.Next() {
		var rec CalculationRecord
		var fallback int
		if err := rows.Scan(&rec.ID, &rec.TotalSeats, &rec.TotalVotes, &fallback, &rec.CreatedAt); err != nil {
			return nil, unavailable("scan calculation", err)
		}
		rec.TieFallback = fallback != 0
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate calculations", err)
	}

	for i := range recs {
		results, err := s.calculationResults(ctx, recs[i].ID)
		if err != nil {
			return nil, err
		}
		recs[i].Results = results
	}
	return recs, nil
}

// CalculationByID returns a single calculation with its result rows.
func (s *Store) CalculationByID(ctx context.Context, id string) (CalculationRecord, error) {
	var rec CalculationRecord
	var fallback int
	err := s.db.QueryRowContext(ctx, `
		SELECT id, total_seats, total_votes, tie_fallback, created_at
		FROM calculation
		WHERE id = $1
	`, id).Scan(&rec.ID, &rec.TotalSeats, &rec.TotalVotes, &fallback, &rec.CreatedAt)

	if err == sql.ErrNoRows {
		return CalculationRecord{}, fmt.Errorf("%w: %s", ErrCalculationNotFound, id)
	}
	if err != nil {
		return CalculationRecord{}, unavailable("query calculation", err)
	}
	rec.TieFallback = fallback != 0

	rec.Results, err = s.calculationResults(ctx, rec.ID)
	if err != nil {
		return CalculationRecord{}, err
	}
	return rec, nil
}

func (s *Store) calculationResults(ctx context.Context, calcID string) ([]ResultRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.party_id, p.name, r.votes, r.seats
		FROM calculation_result r
		JOIN party p ON p.id = r.party_id
		WHERE r.calculation_id = $1
		ORDER BY r.seats DESC, r.votes DESC, p.name
	`, calcID)
	if err != nil {
		return nil, unavailable("query calculation results", err)
	}
	defer rows.Close()

	results := []ResultRecord{}
	for rows.Next() {
		var r ResultRecord
		if err := rows.Scan(&r.PartyID, &r.PartyName, &r.Votes, &r.Seats); err != nil {
			return nil, unavailable("scan calculation result", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate calculation results", err)
	}
	return results, nil
}

// Parties returns the registry ordered by name.
func (s *Store) Parties(ctx context.Context) ([]models.Party, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at FROM party ORDER BY name
	`)
	if err != nil {
		return nil, unavailable("query parties", err)
	}
	defer rows.Close()

	parties := []models.Party{}
	for rows.Next() {
		var p models.Party
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, unavailable("scan party", err)
		}
		parties = append(parties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate parties", err)
	}
	return parties, nil
}

// Stats returns row counts and the most recent calculation timestamp.
func (s *Store) Stats(ctx context.Context) (models.StatsResponse, error) {
	var stats models.StatsResponse

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM party`, &stats.TotalParties},
		{`SELECT COUNT(*) FROM calculation`, &stats.TotalCalculations},
		{`SELECT COUNT(*) FROM calculation_result`, &stats.TotalResults},
		{`SELECT COUNT(*) FROM voting_submission`, &stats.TotalSubmissions},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dest); err != nil {
			return models.StatsResponse{}, unavailable("count rows", err)
		}
	}

	var latest time.Time
	err := s.db.QueryRowContext(ctx, `
		SELECT created_at FROM calculation ORDER BY created_at DESC LIMIT 1
	`).Scan(&latest)
	if err != nil && err != sql.ErrNoRows {
		return models.StatsResponse{}, unavailable("latest calculation", err)
	}
	if err == nil {
		stats.MostRecentCalculation = &latest
	}
	return stats, nil
}
