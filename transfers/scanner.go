package transfers

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LerianStudio/lib-tangle/bundle"
	"github.com/LerianStudio/lib-tangle/log"
	"github.com/LerianStudio/lib-tangle/trinary"
)

const tracerName = "github.com/LerianStudio/lib-tangle/transfers"

// DefaultBatchSize is how many addresses are derived and looked up per
// round trip. Batch size is a latency knob, not a correctness one.
const DefaultBatchSize = 8

// AddressSource produces deterministic addresses for a seed. Derivation
// must be a pure function of (seed, index): re-deriving any range yields
// the same addresses, which the unbounded-scan termination rule relies on.
type AddressSource interface {
	Range(seed trinary.Seed, start, count int) ([]trinary.Address, error)
}

// TransactionLookup finds ledger activity. Implementations may parallelize
// internally but must keep results parallel to their inputs.
type TransactionLookup interface {
	// TransactionsByAddress returns, for each input address, the hashes of
	// transactions referencing it. An empty set is a valid result.
	TransactionsByAddress(ctx context.Context, addresses []trinary.Address) ([][]trinary.Hash, error)

	// BundleHashes returns the bundle hash of each input transaction,
	// parallel to the input.
	BundleHashes(ctx context.Context, txHashes []trinary.Hash) ([]trinary.Hash, error)
}

// BundleAssembler reconstructs validated bundles from bundle hashes.
type BundleAssembler interface {
	AssembleBundles(ctx context.Context, hashes []trinary.Hash) ([]bundle.Bundle, error)
}

// InclusionStateSource reports per-transaction confirmation.
type InclusionStateSource interface {
	InclusionStates(ctx context.Context, hashes []trinary.Hash) (map[trinary.Hash]bool, error)
}

// Response is the terminal artifact of a scan: the discovered bundles in
// first-seen order.
type Response struct {
	Bundles []bundle.Bundle
}

// Scanner walks a seed's address sequence and assembles the transfers it
// finds. Each Scan owns its cursor and accumulators exclusively; a Scanner
// is safe for concurrent use as long as its collaborators are.
type Scanner struct {
	addresses AddressSource
	lookup    TransactionLookup
	assembler BundleAssembler
	inclusion InclusionStateSource
	batchSize int
	logger    log.Logger
	tracer    trace.Tracer
}

// ScannerOption customizes a Scanner.
type ScannerOption func(*Scanner)

// WithBatchSize overrides DefaultBatchSize. Values below 1 are ignored.
func WithBatchSize(size int) ScannerOption {
	return func(s *Scanner) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithScanLogger injects a logger. The default drops everything.
func WithScanLogger(logger log.Logger) ScannerOption {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewScanner wires a Scanner from its collaborators.
func NewScanner(
	addresses AddressSource,
	lookup TransactionLookup,
	assembler BundleAssembler,
	inclusion InclusionStateSource,
	opts ...ScannerOption,
) *Scanner {
	scanner := &Scanner{
		addresses: addresses,
		lookup:    lookup,
		assembler: assembler,
		inclusion: inclusion,
		batchSize: DefaultBatchSize,
		logger:    log.NewNop(),
		tracer:    otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		opt(scanner)
	}

	return scanner
}

// Execute validates a raw request mapping and runs the scan. This is the
// component's produced interface: it returns either a complete Response or
// an error (*Report for validation failures, collaborator errors
// otherwise), never a partial result.
func (s *Scanner) Execute(ctx context.Context, raw map[string]any) (Response, error) {
	req, err := ParseRequest(raw)
	if err != nil {
		return Response{}, err
	}

	return s.Scan(ctx, req)
}

// Scan discovers all transfers for a validated request.
//
// Bounded scans query every index in [Start, End) and never stop early.
// Unbounded scans stop at the first address, in derivation order, with no
// associated transactions. That cut-off assumes addresses are used in
// derivation order and never after being skipped; the surrounding system
// upholds that invariant, and a bounded scan bypasses the heuristic
// entirely.
func (s *Scanner) Scan(ctx context.Context, req Request) (Response, error) {
	ctx, span := s.tracer.Start(ctx, "transfers.Scan",
		trace.WithAttributes(
			attribute.Int("scan.start", req.Start),
			attribute.Bool("scan.bounded", req.End != nil),
			attribute.Bool("scan.inclusion_states", req.InclusionStates),
		))
	defer span.End()

	txHashes, err := s.collectTransactions(ctx, req)
	if err != nil {
		return Response{}, err
	}

	if len(txHashes) == 0 {
		return Response{Bundles: []bundle.Bundle{}}, nil
	}

	bundleHashes, err := s.discoverBundleHashes(ctx, txHashes)
	if err != nil {
		return Response{}, err
	}

	bundles, err := s.assembler.AssembleBundles(ctx, bundleHashes)
	if err != nil {
		return Response{}, err
	}

	if req.InclusionStates {
		if err := s.annotateInclusionStates(ctx, bundles); err != nil {
			return Response{}, err
		}
	}

	span.SetAttributes(attribute.Int("scan.bundles", len(bundles)))

	return Response{Bundles: bundles}, nil
}

// collectTransactions walks the scan window batch by batch and returns all
// discovered transaction hashes in logical scan order.
func (s *Scanner) collectTransactions(ctx context.Context, req Request) ([]trinary.Hash, error) {
	var collected []trinary.Hash

	cursor := req.Start

	for {
		count := s.batchSize

		if req.End != nil {
			remaining := *req.End - cursor
			if remaining <= 0 {
				return collected, nil
			}

			if remaining < count {
				count = remaining
			}
		}

		addresses, err := s.addresses.Range(req.Seed, cursor, count)
		if err != nil {
			return nil, err
		}

		perAddress, err := s.lookup.TransactionsByAddress(ctx, addresses)
		if err != nil {
			return nil, err
		}

		if len(perAddress) != len(addresses) {
			return nil, fmt.Errorf("transfers: lookup returned %d result sets for %d addresses",
				len(perAddress), len(addresses))
		}

		for i, hashes := range perAddress {
			if len(hashes) == 0 && req.End == nil {
				// First unused address: this index and every later one are
				// assumed never used.
				s.logger.Debugf("scan stopped at unused address index %d", cursor+i)
				return collected, nil
			}

			collected = append(collected, hashes...)
		}

		cursor += count
	}
}

// discoverBundleHashes maps scan-ordered transaction hashes to their
// bundle hashes, deduplicated in first-seen order.
func (s *Scanner) discoverBundleHashes(ctx context.Context, txHashes []trinary.Hash) ([]trinary.Hash, error) {
	bundleHashes, err := s.lookup.BundleHashes(ctx, txHashes)
	if err != nil {
		return nil, err
	}

	if len(bundleHashes) != len(txHashes) {
		return nil, fmt.Errorf("transfers: lookup returned %d bundle hashes for %d transactions",
			len(bundleHashes), len(txHashes))
	}

	seen := make(map[trinary.Hash]struct{}, len(bundleHashes))
	ordered := make([]trinary.Hash, 0, len(bundleHashes))

	for _, hash := range bundleHashes {
		if _, dup := seen[hash]; dup {
			continue
		}

		seen[hash] = struct{}{}

		ordered = append(ordered, hash)
	}

	return ordered, nil
}

// annotateInclusionStates merges confirmation flags onto every transaction
// of every bundle, in place.
func (s *Scanner) annotateInclusionStates(ctx context.Context, bundles []bundle.Bundle) error {
	var hashes []trinary.Hash

	for _, b := range bundles {
		for _, tx := range b.Transactions {
			hashes = append(hashes, tx.Hash)
		}
	}

	if len(hashes) == 0 {
		return nil
	}

	states, err := s.inclusion.InclusionStates(ctx, hashes)
	if err != nil {
		return err
	}

	for bi := range bundles {
		for ti := range bundles[bi].Transactions {
			tx := &bundles[bi].Transactions[ti]
			if confirmed, ok := states[tx.Hash]; ok {
				flag := confirmed
				tx.Confirmed = &flag
			}
		}
	}

	return nil
}
