// Package scrape fetches member detail pages and extracts member records.
//
// # Components
//
//   - Client: HTTP fetcher with an explicit capped-exponential retry policy
//     and a shared politeness rate limiter
//   - Extract: goquery-based extraction of the thirteen record fields
//   - Pool: bounded worker pool that turns fetch tasks into records
//
// # Retry policy
//
// The retry policy is explicit rather than delegated to an HTTP middleware
// library: the delay before retry N is backoffBase * 2^(N-1), capped at
// backoffCap, and only transient failures (transport errors, timeouts,
// 5xx, 429) are retried. Permanent failures (any other 4xx) short-circuit.
// Either way a task always yields exactly one record; a task that cannot
// be fetched yields an all-placeholder record, never a dropped row.
package scrape
