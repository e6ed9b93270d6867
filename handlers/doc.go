// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers implements the HTTP request handlers for the D'Hondt
allocation API.

# Handlers

  - SubmissionsHandler: the vote ledger surface
    (submit, list, aggregate preview, bulk clear)
  - CalculationsHandler: the allocation pipeline and its archive
    (calculate-aggregate, history, single lookup, stats)
  - ReportsHandler: xlsx workbook downloads (comprehensive and
    date/party filtered)

Handlers hold a *store.Store and stay thin: request parsing, input
validation, a store or engine call, and a JSON (or workbook) response.
The allocation math itself lives in the dhondt package.

# Error Mapping

Store sentinels map uniformly to status codes: ErrInvalidVotes and
ErrPartyNotFound are 400, ErrCalculationNotFound is 404, and the
retryable ErrUnavailable is 503. Engine validation failures are 400.
*/
package handlers
