package transfers

import (
	"context"
	"fmt"

	"github.com/LerianStudio/lib-tangle/errgroup"
	"github.com/LerianStudio/lib-tangle/node"
	"github.com/LerianStudio/lib-tangle/trinary"
)

// NodeLookup implements TransactionLookup over a node.Caller. Per-address
// queries inside one call run concurrently, but results are reassembled in
// input order so the scanner's termination rule sees the logical sequence,
// not arrival order.
type NodeLookup struct {
	caller node.Caller
}

// Compile-time assertion: NodeLookup implements TransactionLookup.
var _ TransactionLookup = NodeLookup{}

// NewNodeLookup builds a lookup over the given caller.
func NewNodeLookup(caller node.Caller) NodeLookup {
	return NodeLookup{caller: caller}
}

// TransactionsByAddress implements TransactionLookup.
func (l NodeLookup) TransactionsByAddress(ctx context.Context, addresses []trinary.Address) ([][]trinary.Hash, error) {
	results := make([][]trinary.Hash, len(addresses))

	grp, grpCtx := errgroup.WithContext(ctx)

	for i, addr := range addresses {
		i, addr := i, addr

		grp.Go(func() error {
			hashes, err := l.caller.FindTransactions(grpCtx, node.FindTransactionsQuery{
				Addresses: []trinary.Address{addr},
			})
			if err != nil {
				return err
			}

			results[i] = hashes

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

// BundleHashes implements TransactionLookup.
func (l NodeLookup) BundleHashes(ctx context.Context, txHashes []trinary.Hash) ([]trinary.Hash, error) {
	if len(txHashes) == 0 {
		return nil, nil
	}

	records, err := l.caller.GetTransactions(ctx, txHashes)
	if err != nil {
		return nil, err
	}

	byHash := make(map[trinary.Hash]trinary.Hash, len(records))
	for _, rec := range records {
		byHash[rec.Hash] = rec.BundleHash
	}

	out := make([]trinary.Hash, len(txHashes))

	for i, h := range txHashes {
		bundleHash, ok := byHash[h]
		if !ok {
			return nil, fmt.Errorf("transfers: node returned no record for transaction %s", h)
		}

		out[i] = bundleHash
	}

	return out, nil
}

// NodeInclusionSource implements InclusionStateSource over a node.Caller.
type NodeInclusionSource struct {
	caller node.Caller
}

// Compile-time assertion: NodeInclusionSource implements
// InclusionStateSource.
var _ InclusionStateSource = NodeInclusionSource{}

// NewNodeInclusionSource builds an inclusion-state source over the caller.
func NewNodeInclusionSource(caller node.Caller) NodeInclusionSource {
	return NodeInclusionSource{caller: caller}
}

// InclusionStates implements InclusionStateSource.
func (s NodeInclusionSource) InclusionStates(ctx context.Context, hashes []trinary.Hash) (map[trinary.Hash]bool, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	states, err := s.caller.GetInclusionStates(ctx, hashes)
	if err != nil {
		return nil, err
	}

	out := make(map[trinary.Hash]bool, len(hashes))
	for i, h := range hashes {
		out[h] = states[i]
	}

	return out, nil
}
