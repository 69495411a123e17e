package bundle

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LerianStudio/lib-tangle/log"
	"github.com/LerianStudio/lib-tangle/node"
	"github.com/LerianStudio/lib-tangle/trinary"
)

// Assembly failure modes. All of them indicate malformed or missing ledger
// data on the node; none are produced for an empty input.
var (
	// ErrUnknownBundle is returned when the node has no transactions for a
	// requested bundle hash.
	ErrUnknownBundle = errors.New("bundle: no transactions for bundle hash")
	// ErrIncompleteBundle is returned when member indices are not the
	// contiguous range 0..lastIndex.
	ErrIncompleteBundle = errors.New("bundle: incomplete transaction set")
	// ErrInconsistentBundle is returned when members disagree on bundle
	// hash or last index.
	ErrInconsistentBundle = errors.New("bundle: inconsistent transaction set")
)

// Assembler reconstructs bundles from a node.
type Assembler struct {
	caller node.Caller
	logger log.Logger
}

// NewAssembler builds an assembler over the given caller.
func NewAssembler(caller node.Caller, logger log.Logger) *Assembler {
	if logger == nil {
		logger = log.NewNop()
	}

	return &Assembler{caller: caller, logger: logger}
}

// AssembleBundles reconstructs one bundle per input hash, preserving input
// order. Duplicate input hashes yield duplicate bundles; deduplication is
// the caller's concern.
func (a *Assembler) AssembleBundles(ctx context.Context, hashes []trinary.Hash) ([]Bundle, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	txHashes, err := a.caller.FindTransactions(ctx, node.FindTransactionsQuery{Bundles: hashes})
	if err != nil {
		return nil, err
	}

	records, err := a.caller.GetTransactions(ctx, txHashes)
	if err != nil {
		return nil, err
	}

	byBundle := make(map[trinary.Hash][]Transaction, len(hashes))
	for _, rec := range records {
		byBundle[rec.BundleHash] = append(byBundle[rec.BundleHash], fromRecord(rec))
	}

	bundles := make([]Bundle, 0, len(hashes))

	for _, hash := range hashes {
		members := byBundle[hash]
		if len(members) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownBundle, hash)
		}

		assembled, err := assemble(hash, members)
		if err != nil {
			return nil, err
		}

		a.logger.Debugf("assembled bundle %s with %d transactions", hash, len(assembled.Transactions))

		bundles = append(bundles, assembled)
	}

	return bundles, nil
}

// assemble orders members by current index and validates that they form a
// complete, consistent bundle.
func assemble(hash trinary.Hash, members []Transaction) (Bundle, error) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].CurrentIndex < members[j].CurrentIndex
	})

	lastIndex := members[0].LastIndex

	if len(members) != lastIndex+1 {
		return Bundle{}, fmt.Errorf("%w: %s has %d transactions, last index %d",
			ErrIncompleteBundle, hash, len(members), lastIndex)
	}

	for i, tx := range members {
		if tx.BundleHash != hash || tx.LastIndex != lastIndex {
			return Bundle{}, fmt.Errorf("%w: %s member %s", ErrInconsistentBundle, hash, tx.Hash)
		}

		if tx.CurrentIndex != i {
			return Bundle{}, fmt.Errorf("%w: %s missing index %d", ErrIncompleteBundle, hash, i)
		}
	}

	return Bundle{Hash: hash, Transactions: members}, nil
}
