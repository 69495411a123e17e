// Package tangle is a client for querying transfers from a distributed
// ledger node.
//
// The root package wires the transport, address derivation, bundle
// assembly, and scan pipeline into a single Client. Each concern also
// stands alone in its own subpackage for callers that want to compose
// them differently or substitute their own implementations.
package tangle
