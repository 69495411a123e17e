// Package backoff provides retry delay helpers with exponential growth and
// full jitter.
//
// Use Delay to compute the wait before a retry attempt and Sleep to wait
// while respecting cancellation and deadlines.
package backoff
