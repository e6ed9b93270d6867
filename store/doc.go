// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the persistence boundary between the HTTP layer and
the allocation engine.

It owns all SQL for the vote ledger (append, read, aggregate, clear)
and the calculation archive (atomic write, history reads). Each call is
a single statement or a single transaction, which gives the pipeline
its snapshot guarantees: an aggregation never observes a half-applied
batch of submissions or a half-finished clear, and a calculation is
either fully recorded (header plus all result rows) or not at all.

Errors are tagged with package sentinels so handlers can map them to
status codes with errors.Is: ErrPartyNotFound, ErrCalculationNotFound,
ErrInvalidVotes, and the retryable ErrUnavailable for driver failures.
*/
package store
