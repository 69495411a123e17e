package transfers

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LerianStudio/lib-tangle/bundle"
	"github.com/LerianStudio/lib-tangle/trinary"
)

// addrAt gives every derivation index a stable fake address.
func addrAt(index int) trinary.Address {
	return trinary.Address(fmt.Sprintf("ADDRESS%c", 'A'+byte(index)))
}

// fakeAddressSource derives addrAt addresses and records which indices were
// ever derived.
type fakeAddressSource struct {
	derived []int
	err     error
}

func (f *fakeAddressSource) Range(_ trinary.Seed, start, count int) ([]trinary.Address, error) {
	if f.err != nil {
		return nil, f.err
	}

	out := make([]trinary.Address, count)
	for i := 0; i < count; i++ {
		f.derived = append(f.derived, start+i)
		out[i] = addrAt(start + i)
	}

	return out, nil
}

// fakeLookup serves canned transactions per address and bundle hashes per
// transaction, recording every address probed.
type fakeLookup struct {
	txsByAddress map[trinary.Address][]trinary.Hash
	bundleByTx   map[trinary.Hash]trinary.Hash
	probed       []trinary.Address

	txErr     error
	bundleErr error
}

func (f *fakeLookup) TransactionsByAddress(_ context.Context, addresses []trinary.Address) ([][]trinary.Hash, error) {
	if f.txErr != nil {
		return nil, f.txErr
	}

	out := make([][]trinary.Hash, len(addresses))

	for i, addr := range addresses {
		f.probed = append(f.probed, addr)
		out[i] = f.txsByAddress[addr]
	}

	return out, nil
}

func (f *fakeLookup) BundleHashes(_ context.Context, txHashes []trinary.Hash) ([]trinary.Hash, error) {
	if f.bundleErr != nil {
		return nil, f.bundleErr
	}

	out := make([]trinary.Hash, len(txHashes))
	for i, h := range txHashes {
		out[i] = f.bundleByTx[h]
	}

	return out, nil
}

// fakeAssembler returns one single-transaction bundle per requested hash and
// records each request.
type fakeAssembler struct {
	requests [][]trinary.Hash
	err      error
}

func (f *fakeAssembler) AssembleBundles(_ context.Context, hashes []trinary.Hash) ([]bundle.Bundle, error) {
	f.requests = append(f.requests, append([]trinary.Hash(nil), hashes...))

	if f.err != nil {
		return nil, f.err
	}

	out := make([]bundle.Bundle, len(hashes))
	for i, h := range hashes {
		out[i] = bundle.Bundle{
			Hash: h,
			Transactions: []bundle.Transaction{
				{Hash: trinary.Hash("TX9" + h), BundleHash: h},
			},
		}
	}

	return out, nil
}

// fakeInclusion serves a fixed confirmation map and counts calls.
type fakeInclusion struct {
	states map[trinary.Hash]bool
	calls  int
	err    error
}

func (f *fakeInclusion) InclusionStates(_ context.Context, hashes []trinary.Hash) (map[trinary.Hash]bool, error) {
	f.calls++

	if f.err != nil {
		return nil, f.err
	}

	out := make(map[trinary.Hash]bool, len(hashes))
	for _, h := range hashes {
		out[h] = f.states[h]
	}

	return out, nil
}

type scanFixture struct {
	addresses *fakeAddressSource
	lookup    *fakeLookup
	assembler *fakeAssembler
	inclusion *fakeInclusion
	scanner   *Scanner
}

func newScanFixture(opts ...ScannerOption) *scanFixture {
	f := &scanFixture{
		addresses: &fakeAddressSource{},
		lookup: &fakeLookup{
			txsByAddress: map[trinary.Address][]trinary.Hash{},
			bundleByTx:   map[trinary.Hash]trinary.Hash{},
		},
		assembler: &fakeAssembler{},
		inclusion: &fakeInclusion{states: map[trinary.Hash]bool{}},
	}

	f.scanner = NewScanner(f.addresses, f.lookup, f.assembler, f.inclusion, opts...)

	return f
}

// use marks an address index as carrying the given transactions, each
// belonging to the given bundle.
func (f *scanFixture) use(index int, bundleHash trinary.Hash, txHashes ...trinary.Hash) {
	addr := addrAt(index)
	f.lookup.txsByAddress[addr] = append(f.lookup.txsByAddress[addr], txHashes...)

	for _, h := range txHashes {
		f.lookup.bundleByTx[h] = bundleHash
	}
}

func TestScanner_UnboundedStopsAtFirstUnusedAddress(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(1))
	f.use(0, "BUNDLEA", "TXA")
	f.use(1, "BUNDLEB", "TXB")
	// Index 2 is unused; index 3 is used but must stay invisible.
	f.use(3, "BUNDLEC", "TXC")

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

	require.NoError(t, err)
	require.Len(t, resp.Bundles, 2)
	assert.Equal(t, trinary.Hash("BUNDLEA"), resp.Bundles[0].Hash)
	assert.Equal(t, trinary.Hash("BUNDLEB"), resp.Bundles[1].Hash)

	// The scan never reaches past the first unused index.
	assert.Equal(t, []int{0, 1, 2}, f.addresses.derived)
	assert.Equal(t, []trinary.Address{addrAt(0), addrAt(1), addrAt(2)}, f.lookup.probed)
}

func TestScanner_UnboundedCutoffInsideBatch(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(4))
	f.use(0, "BUNDLEA", "TXA")
	// Index 1 is unused; index 2 sits after the cut-off in the same batch.
	f.use(2, "BUNDLEB", "TXB")

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

	require.NoError(t, err)
	require.Len(t, resp.Bundles, 1)
	assert.Equal(t, trinary.Hash("BUNDLEA"), resp.Bundles[0].Hash)
}

func TestScanner_BoundedScansEveryIndex(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(2))
	f.use(0, "BUNDLEA", "TXA")
	// Indices 1 and 2 are unused gaps that must not stop a bounded scan.
	f.use(3, "BUNDLEB", "TXB")
	// Index 5 is used but outside the window.
	f.use(5, "BUNDLEC", "TXC")

	end := 5

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed, End: &end})

	require.NoError(t, err)
	require.Len(t, resp.Bundles, 2)
	assert.Equal(t, trinary.Hash("BUNDLEA"), resp.Bundles[0].Hash)
	assert.Equal(t, trinary.Hash("BUNDLEB"), resp.Bundles[1].Hash)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, f.addresses.derived)
}

func TestScanner_BoundedClampsFinalBatch(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(8))
	f.use(2, "BUNDLEA", "TXA")

	end := 3

	_, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed, Start: 2, End: &end})

	require.NoError(t, err)
	assert.Equal(t, []int{2}, f.addresses.derived)
}

func TestScanner_EmptyWindow(t *testing.T) {
	t.Parallel()

	f := newScanFixture()

	end := 5

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed, Start: 5, End: &end})

	require.NoError(t, err)
	require.NotNil(t, resp.Bundles)
	assert.Empty(t, resp.Bundles)
	assert.Empty(t, f.addresses.derived)
	assert.Empty(t, f.lookup.probed)
	assert.Empty(t, f.assembler.requests)
}

func TestScanner_NoActivity(t *testing.T) {
	t.Parallel()

	f := newScanFixture()

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

	require.NoError(t, err)
	require.NotNil(t, resp.Bundles)
	assert.Empty(t, resp.Bundles)
	assert.Empty(t, f.assembler.requests)
	assert.Zero(t, f.inclusion.calls)
}

func TestScanner_DeduplicatesBundleHashesFirstSeen(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(1))
	// Two transactions of the same bundle, then a second bundle, then the
	// first bundle again on a later address.
	f.use(0, "BUNDLEA", "TXA1", "TXA2")
	f.use(1, "BUNDLEB", "TXB")
	f.use(2, "BUNDLEA", "TXA3")

	resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

	require.NoError(t, err)
	require.Len(t, f.assembler.requests, 1)
	assert.Equal(t, []trinary.Hash{"BUNDLEA", "BUNDLEB"}, f.assembler.requests[0])
	require.Len(t, resp.Bundles, 2)
}

func TestScanner_InclusionStates(t *testing.T) {
	t.Parallel()

	t.Run("disabled never queries the source", func(t *testing.T) {
		t.Parallel()

		f := newScanFixture()
		f.use(0, "BUNDLEA", "TXA")

		resp, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

		require.NoError(t, err)
		assert.Zero(t, f.inclusion.calls)

		require.Len(t, resp.Bundles, 1)
		assert.Nil(t, resp.Bundles[0].Transactions[0].Confirmed)
	})

	t.Run("enabled merges confirmation flags", func(t *testing.T) {
		t.Parallel()

		f := newScanFixture(WithBatchSize(1))
		f.use(0, "BUNDLEA", "TXA")
		f.use(1, "BUNDLEB", "TXB")

		// The assembler materializes transactions as TX9<bundle hash>.
		f.inclusion.states[trinary.Hash("TX9BUNDLEA")] = true
		f.inclusion.states[trinary.Hash("TX9BUNDLEB")] = false

		resp, err := f.scanner.Scan(context.Background(),
			Request{Seed: filterSeed, InclusionStates: true})

		require.NoError(t, err)
		assert.Equal(t, 1, f.inclusion.calls)

		require.Len(t, resp.Bundles, 2)
		require.NotNil(t, resp.Bundles[0].Transactions[0].Confirmed)
		assert.True(t, *resp.Bundles[0].Transactions[0].Confirmed)
		require.NotNil(t, resp.Bundles[1].Transactions[0].Confirmed)
		assert.False(t, *resp.Bundles[1].Transactions[0].Confirmed)
	})
}

func TestScanner_Idempotent(t *testing.T) {
	t.Parallel()

	f := newScanFixture(WithBatchSize(2))
	f.use(0, "BUNDLEA", "TXA")
	f.use(1, "BUNDLEB", "TXB")

	first, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})
	require.NoError(t, err)

	second, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestScanner_CollaboratorErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")

	tests := []struct {
		name  string
		setup func(*scanFixture)
	}{
		{name: "address source", setup: func(f *scanFixture) { f.addresses.err = boom }},
		{name: "transaction lookup", setup: func(f *scanFixture) { f.lookup.txErr = boom }},
		{name: "bundle hash lookup", setup: func(f *scanFixture) { f.lookup.bundleErr = boom }},
		{name: "assembler", setup: func(f *scanFixture) { f.assembler.err = boom }},
		{name: "inclusion source", setup: func(f *scanFixture) { f.inclusion.err = boom }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newScanFixture()
			f.use(0, "BUNDLEA", "TXA")
			tt.setup(f)

			_, err := f.scanner.Scan(context.Background(),
				Request{Seed: filterSeed, InclusionStates: true})

			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestScanner_LookupLengthMismatch(t *testing.T) {
	t.Parallel()

	f := newScanFixture()
	f.scanner = NewScanner(f.addresses, brokenLookup{}, f.assembler, f.inclusion)

	_, err := f.scanner.Scan(context.Background(), Request{Seed: filterSeed})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "result sets")
}

// brokenLookup violates the parallel-results contract.
type brokenLookup struct{}

func (brokenLookup) TransactionsByAddress(context.Context, []trinary.Address) ([][]trinary.Hash, error) {
	return [][]trinary.Hash{{"TXA"}}, nil
}

func (brokenLookup) BundleHashes(context.Context, []trinary.Hash) ([]trinary.Hash, error) {
	return nil, nil
}

func TestScanner_ExecuteValidates(t *testing.T) {
	t.Parallel()

	f := newScanFixture()

	_, err := f.scanner.Execute(context.Background(), map[string]any{
		"seed":  filterSeed,
		"start": -1,
	})

	requireReport(t, err, map[string][]FieldCode{
		"start": {CodeTooSmall},
	})

	// Validation failures never reach the collaborators.
	assert.Empty(t, f.addresses.derived)
	assert.Empty(t, f.lookup.probed)
}

func TestScanner_ExecuteRunsScan(t *testing.T) {
	t.Parallel()

	f := newScanFixture()
	f.use(0, "BUNDLEA", "TXA")

	resp, err := f.scanner.Execute(context.Background(), map[string]any{
		"seed": filterSeed,
	})

	require.NoError(t, err)
	require.Len(t, resp.Bundles, 1)
	assert.Equal(t, trinary.Hash("BUNDLEA"), resp.Bundles[0].Hash)
}
