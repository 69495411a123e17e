// Package transfers discovers the transfers (bundles of transactions)
// associated with the addresses derived from a seed.
//
// Execution is a two-step pipeline: ParseRequest normalizes and validates
// the caller's loosely-typed request without touching the network, then
// Scanner walks the deterministic address sequence, queries the node for
// activity on each address, and assembles the resulting bundles. All
// collaborators are injected capabilities, so the scanner can be exercised
// without network access.
package transfers
