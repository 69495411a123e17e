// Package bundle provides the transaction/bundle domain types and the
// bundle-assembly sub-command.
//
// A bundle is an atomic, ordered group of transactions sharing one bundle
// hash. The Assembler reconstructs bundles from a node given their hashes
// and validates internal consistency; malformed ledger data fails the whole
// call rather than producing a partial bundle.
package bundle
