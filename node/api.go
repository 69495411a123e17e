package node

import (
	"context"
	"fmt"

	"github.com/LerianStudio/lib-tangle/trinary"
)

// FindTransactionsQuery selects transactions by address or by bundle hash.
// Exactly one field should be set.
type FindTransactionsQuery struct {
	Addresses []trinary.Address `json:"addresses,omitempty"`
	Bundles   []trinary.Hash    `json:"bundles,omitempty"`
}

// TransactionRecord is the structured transaction representation returned
// by the node. The node serves decoded records rather than raw transaction
// trytes; tryte codecs are outside this client's responsibility.
type TransactionRecord struct {
	Hash         trinary.Hash    `json:"hash"`
	Address      trinary.Address `json:"address"`
	BundleHash   trinary.Hash    `json:"bundleHash"`
	Value        int64           `json:"value"`
	CurrentIndex int             `json:"currentIndex"`
	LastIndex    int             `json:"lastIndex"`
	Timestamp    int64           `json:"timestamp"`
	Tag          trinary.Trytes  `json:"tag"`
}

// Caller executes commands against a node. An empty result set is a valid,
// non-error outcome for every call.
type Caller interface {
	// FindTransactions returns the hashes of transactions matching the
	// query.
	FindTransactions(ctx context.Context, query FindTransactionsQuery) ([]trinary.Hash, error)

	// GetTransactions fetches the structured records for the given
	// transaction hashes.
	GetTransactions(ctx context.Context, hashes []trinary.Hash) ([]TransactionRecord, error)

	// GetInclusionStates reports, for each transaction hash, whether the
	// ledger's consensus confirms it. The result is parallel to the input.
	GetInclusionStates(ctx context.Context, hashes []trinary.Hash) ([]bool, error)
}

// Error is a failure reported by the node itself, as opposed to a
// transport failure reaching it.
type Error struct {
	Command string
	Message string
}

// Error returns the formatted node error string.
func (e *Error) Error() string {
	return fmt.Sprintf("node: %s: %s", e.Command, e.Message)
}
