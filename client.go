package tangle

import (
	"context"

	"github.com/LerianStudio/lib-tangle/address"
	"github.com/LerianStudio/lib-tangle/bundle"
	"github.com/LerianStudio/lib-tangle/log"
	"github.com/LerianStudio/lib-tangle/node"
	"github.com/LerianStudio/lib-tangle/transfers"
)

// Client is the assembled ledger client. Construct it with New; the zero
// value is not usable.
type Client struct {
	caller  node.Caller
	scanner *transfers.Scanner
}

type clientOptions struct {
	logger    log.Logger
	caller    node.Caller
	addresses transfers.AddressSource
	batchSize int
}

// Option customizes a Client.
type Option func(*clientOptions)

// WithLogger injects a logger into every component. The default drops
// everything.
func WithLogger(logger log.Logger) Option {
	return func(o *clientOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithCaller substitutes the node transport. When set, the node.Config
// passed to New is ignored.
func WithCaller(caller node.Caller) Option {
	return func(o *clientOptions) {
		if caller != nil {
			o.caller = caller
		}
	}
}

// WithAddressSource substitutes the address derivation scheme.
func WithAddressSource(source transfers.AddressSource) Option {
	return func(o *clientOptions) {
		if source != nil {
			o.addresses = source
		}
	}
}

// WithBatchSize sets how many addresses each scan round trip covers.
func WithBatchSize(size int) Option {
	return func(o *clientOptions) {
		if size > 0 {
			o.batchSize = size
		}
	}
}

// New assembles a Client against the node described by cfg.
func New(cfg node.Config, opts ...Option) (*Client, error) {
	options := clientOptions{
		logger:    log.NewNop(),
		addresses: address.NewGenerator(),
		batchSize: transfers.DefaultBatchSize,
	}

	for _, opt := range opts {
		opt(&options)
	}

	caller := options.caller
	if caller == nil {
		httpCaller, err := node.NewHTTPCaller(cfg, node.WithLogger(options.logger))
		if err != nil {
			return nil, err
		}

		caller = httpCaller
	}

	scanner := transfers.NewScanner(
		options.addresses,
		transfers.NewNodeLookup(caller),
		bundle.NewAssembler(caller, options.logger),
		transfers.NewNodeInclusionSource(caller),
		transfers.WithBatchSize(options.batchSize),
		transfers.WithScanLogger(options.logger),
	)

	return &Client{caller: caller, scanner: scanner}, nil
}

// GetTransfers validates a raw request mapping, scans the seed's address
// sequence, and returns every discovered transfer. Validation failures are
// reported as a *transfers.Report carrying all violations at once.
func (c *Client) GetTransfers(ctx context.Context, request map[string]any) (transfers.Response, error) {
	return c.scanner.Execute(ctx, request)
}

// Scan runs an already-validated request. Most callers want GetTransfers.
func (c *Client) Scan(ctx context.Context, request transfers.Request) (transfers.Response, error) {
	return c.scanner.Scan(ctx, request)
}

// Node exposes the underlying transport for direct command access.
func (c *Client) Node() node.Caller {
	return c.caller
}
