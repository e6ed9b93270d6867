// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package dhondt

import (
	"errors"
	"fmt"
	"sort"
)

// Statutory eligibility threshold: a party enters the ranking iff
// votes*100 >= 3*totalVotes. Kept as an integer ratio so the boundary
// is exact regardless of platform float behavior.
const (
	thresholdNum = 3
	thresholdDen = 100
)

var (
	ErrNegativeVotes    = errors.New("votes must be non-negative")
	ErrInvalidSeatCount = errors.New("total seats must be positive")
	ErrTotalTooSmall    = errors.New("total votes is less than the sum of party votes")
)

// Submission is a single ledger entry: one reported vote count for one party.
type Submission struct {
	PartyID string
	Votes   int64
}

// Tally is the aggregated vote picture the allocator works from.
// TotalVotes may exceed the sum of the per-party entries when blank or
// contested ballots count toward the grand total; those ballots never
// feed any party's quotient stream but do raise the threshold.
type Tally struct {
	Votes      map[string]int64
	TotalVotes int64
}

// Aggregate reduces a set of submissions into one total per party.
// TotalVotes is set to the plain sum; a caller holding a larger
// certified total (blank votes included) can raise it afterwards.
// Aggregating the same input twice yields an identical tally.
func Aggregate(subs []Submission) (Tally, error) {
	t := Tally{Votes: make(map[string]int64, len(subs))}
	for _, s := range subs {
		if s.Votes < 0 {
			return Tally{}, fmt.Errorf("%w: party %s submitted %d", ErrNegativeVotes, s.PartyID, s.Votes)
		}
		t.Votes[s.PartyID] += s.Votes
		t.TotalVotes += s.Votes
	}
	return t, nil
}

// PartySum returns the number of votes attributed to parties, which is
// at most TotalVotes.
func (t Tally) PartySum() int64 {
	var sum int64
	for _, v := range t.Votes {
		sum += v
	}
	return sum
}

// Eligible returns the IDs of parties meeting the threshold, in
// canonical order: votes descending, then party ID ascending. A party
// with zero votes never qualifies, even when the grand total is zero.
func (t Tally) Eligible() []string {
	ids := make([]string, 0, len(t.Votes))
	for id, v := range t.Votes {
		if v <= 0 {
			continue
		}
		if v*thresholdDen >= thresholdNum*t.TotalVotes {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := ids[i], ids[j]
		if t.Votes[a] != t.Votes[b] {
			return t.Votes[a] > t.Votes[b]
		}
		return a < b
	})
	return ids
}

// PartyResult is the allocation outcome for a single party.
type PartyResult struct {
	PartyID string
	Votes   int64
	Seats   int
}

// Result is the full outcome of one allocation run. TieFallback is set
// when a seat was decided by the stable party-ID fallback because both
// the quotient and the total-votes tiebreak were exact ties; the seat
// assignment is still deterministic, but the condition is surfaced so
// callers can route it to a manual draw.
type Result struct {
	TotalSeats  int
	TotalVotes  int64
	Results     []PartyResult
	TieFallback bool
	TiedParties []string
}

// compareQuotients reports the ordering of av/ad versus bv/bd using
// exact integer cross-multiplication. Divisors are bounded by the seat
// count, so the products stay far inside int64 range for any real
// electorate.
func compareQuotients(av, ad, bv, bd int64) int {
	l, r := av*bd, bv*ad
	switch {
	case l > r:
		return 1
	case l < r:
		return -1
	default:
		return 0
	}
}

// Allocate distributes totalSeats among the tally's eligible parties
// using the D'Hondt highest-averages method.
//
// Ranking order per seat: highest next quotient, then highest total
// votes, then lowest party ID (flagged via Result.TieFallback). Parties
// below the threshold keep their votes in the result with zero seats.
// With no eligible party the result carries zero seats everywhere.
func Allocate(totalSeats int, tally Tally) (Result, error) {
	if totalSeats <= 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrInvalidSeatCount, totalSeats)
	}
	for id, v := range tally.Votes {
		if v < 0 {
			return Result{}, fmt.Errorf("%w: party %s has %d", ErrNegativeVotes, id, v)
		}
	}
	if sum := tally.PartySum(); tally.TotalVotes < sum {
		return Result{}, fmt.Errorf("%w: total %d, party sum %d", ErrTotalTooSmall, tally.TotalVotes, sum)
	}

	type contender struct {
		id    string
		votes int64
		seats int
	}
	var eligible []*contender
	for _, id := range tally.Eligible() {
		eligible = append(eligible, &contender{id: id, votes: tally.Votes[id]})
	}

	fallback := false
	tied := make(map[string]bool)

	if len(eligible) > 0 {
		for seat := 0; seat < totalSeats; seat++ {
			// Collect the contenders sharing the highest next quotient.
			top := []*contender{eligible[0]}
			for _, c := range eligible[1:] {
				switch compareQuotients(c.votes, int64(c.seats+1), top[0].votes, int64(top[0].seats+1)) {
				case 1:
					top = append(top[:0], c)
				case 0:
					top = append(top, c)
				}
			}

			winner := top[0]
			if len(top) > 1 {
				// Quotient tie: the party with more total votes ranks first.
				lead := []*contender{top[0]}
				for _, c := range top[1:] {
					switch {
					case c.votes > lead[0].votes:
						lead = append(lead[:0], c)
					case c.votes == lead[0].votes:
						lead = append(lead, c)
					}
				}
				winner = lead[0]
				for _, c := range lead[1:] {
					if c.id < winner.id {
						winner = c
					}
				}
				if len(lead) > 1 {
					// Unresolvable by rule; broken by party ID and flagged.
					fallback = true
					for _, c := range lead {
						tied[c.id] = true
					}
				}
			}
			winner.seats++
		}
	}

	seatsByParty := make(map[string]int, len(eligible))
	for _, c := range eligible {
		seatsByParty[c.id] = c.seats
	}

	results := make([]PartyResult, 0, len(tally.Votes))
	for id, v := range tally.Votes {
		results = append(results, PartyResult{PartyID: id, Votes: v, Seats: seatsByParty[id]})
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Votes != results[j].Votes {
			return results[i].Votes > results[j].Votes
		}
		return results[i].PartyID < results[j].PartyID
	})

	tiedIDs := make([]string, 0, len(tied))
	for id := range tied {
		tiedIDs = append(tiedIDs, id)
	}
	sort.Strings(tiedIDs)

	return Result{
		TotalSeats:  totalSeats,
		TotalVotes:  tally.TotalVotes,
		Results:     results,
		TieFallback: fallback,
		TiedParties: tiedIDs,
	}, nil
}
