// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package dhondt implements D'Hondt highest-averages seat allocation.

The package is pure: it holds no state between calls and performs no
I/O. Callers aggregate raw vote submissions into a Tally, then ask
Allocate to distribute a seat count over it.

# Pipeline

  - Aggregate: submissions -> per-party totals plus grand total
  - Tally.Eligible: 3% threshold filter (exact integer arithmetic)
  - Allocate: quotient ranking and seat-by-seat assignment

# Ranking

Each eligible party competes with the quotient votes/(seats+1). Seats
go one at a time to the highest quotient; quotients are compared by
integer cross-multiplication, never floating point, so exact ties are
detected identically on every platform.

Tie order: higher quotient, then higher total votes, then ascending
party ID. The last step is a fallback, not a rule: when it decides a
seat the Result carries TieFallback=true and the parties involved, so
the caller can surface the condition for a manual draw while still
holding a reproducible answer.
*/
package dhondt
