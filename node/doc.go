// Package node implements the RPC surface of a tangle node.
//
// Caller is the capability consumed by higher-level commands; HTTPCaller is
// the default implementation, speaking the node's JSON command protocol
// with per-call request IDs, bounded retries on transient failures, and a
// circuit breaker so a dead node fails fast. Recovery policy lives here, in
// the transport, and nowhere above it.
package node
