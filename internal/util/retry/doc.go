// Package retry provides bounded retry with exponential backoff.
//
// Two entry points exist: WithExponentialBackoff for ad hoc call sites
// using functional options, and Policy for call sites whose retry behavior
// is declared up front (attempts, backoff, which error classes retry).
// Errors wrapped with Fatal are never retried.
package retry
