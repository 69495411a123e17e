// Package address derives deterministic account addresses from a seed and
// a derivation index.
//
// Derivation is a pure function: the same (seed, index) pair always yields
// the same address, so callers can re-derive arbitrary index ranges without
// coordination. The transfer scanner's stop-at-first-unused-address rule
// depends on this.
package address
