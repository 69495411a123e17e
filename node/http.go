package node

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/LerianStudio/lib-tangle/backoff"
	"github.com/LerianStudio/lib-tangle/log"
	"github.com/LerianStudio/lib-tangle/trinary"
)

const tracerName = "github.com/LerianStudio/lib-tangle/node"

// errTransient marks failures worth retrying: network errors and node-side
// 5xx responses.
var errTransient = errors.New("node: transient failure")

// HTTPCaller is the default Caller, speaking the node's JSON command
// protocol over HTTP.
type HTTPCaller struct {
	cfg     Config
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  log.Logger
	tracer  trace.Tracer
}

// Compile-time assertion: *HTTPCaller implements Caller.
var _ Caller = (*HTTPCaller)(nil)

// CallerOption customizes an HTTPCaller.
type CallerOption func(*HTTPCaller)

// WithLogger injects a logger. The default drops everything.
func WithLogger(logger log.Logger) CallerOption {
	return func(c *HTTPCaller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(client *http.Client) CallerOption {
	return func(c *HTTPCaller) {
		if client != nil {
			c.client = client
		}
	}
}

// NewHTTPCaller validates cfg and builds the transport.
func NewHTTPCaller(cfg Config, opts ...CallerOption) (*HTTPCaller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	caller := &HTTPCaller{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: log.NewNop(),
		tracer: otel.Tracer(tracerName),
	}

	caller.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "node-" + cfg.NodeURL,
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerConsecutiveFailures
		},
	})

	for _, opt := range opts {
		opt(caller)
	}

	return caller, nil
}

type findTransactionsRequest struct {
	Command string `json:"command"`
	FindTransactionsQuery
}

type findTransactionsResponse struct {
	Hashes []trinary.Hash `json:"hashes"`
}

// FindTransactions implements Caller.
func (c *HTTPCaller) FindTransactions(ctx context.Context, query FindTransactionsQuery) ([]trinary.Hash, error) {
	var out findTransactionsResponse

	req := findTransactionsRequest{Command: "findTransactions", FindTransactionsQuery: query}
	if err := c.call(ctx, req.Command, req, &out); err != nil {
		return nil, err
	}

	return out.Hashes, nil
}

type getTransactionsRequest struct {
	Command string         `json:"command"`
	Hashes  []trinary.Hash `json:"hashes"`
}

type getTransactionsResponse struct {
	Transactions []TransactionRecord `json:"transactions"`
}

// GetTransactions implements Caller.
func (c *HTTPCaller) GetTransactions(ctx context.Context, hashes []trinary.Hash) ([]TransactionRecord, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	var out getTransactionsResponse

	req := getTransactionsRequest{Command: "getTransactions", Hashes: hashes}
	if err := c.call(ctx, req.Command, req, &out); err != nil {
		return nil, err
	}

	return out.Transactions, nil
}

type getInclusionStatesRequest struct {
	Command      string         `json:"command"`
	Transactions []trinary.Hash `json:"transactions"`
}

type getInclusionStatesResponse struct {
	States []bool `json:"states"`
}

// GetInclusionStates implements Caller.
func (c *HTTPCaller) GetInclusionStates(ctx context.Context, hashes []trinary.Hash) ([]bool, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	var out getInclusionStatesResponse

	req := getInclusionStatesRequest{Command: "getInclusionStates", Transactions: hashes}
	if err := c.call(ctx, req.Command, req, &out); err != nil {
		return nil, err
	}

	if len(out.States) != len(hashes) {
		return nil, &Error{
			Command: req.Command,
			Message: fmt.Sprintf("expected %d states, node returned %d", len(hashes), len(out.States)),
		}
	}

	return out.States, nil
}

// call runs one command with retries and the circuit breaker. Node-reported
// errors and open-breaker rejections stop the loop immediately; only
// transient failures are retried.
func (c *HTTPCaller) call(ctx context.Context, command string, payload, out any) error {
	ctx, span := c.tracer.Start(ctx, "node."+command,
		trace.WithAttributes(attribute.String("node.command", command)))
	defer span.End()

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("node: encode %s: %w", command, err)
	}

	var lastErr error

	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := backoff.Delay(c.cfg.RetryBase, attempt-1)

			c.logger.Debugf("retrying %s after %s (attempt %d/%d)", command, delay, attempt, c.cfg.MaxRetries)

			if err := backoff.Sleep(ctx, delay); err != nil {
				return err
			}
		}

		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.do(ctx, command, body, out)
		})
		if err == nil {
			return nil
		}

		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.logger.Warnf("circuit breaker rejected %s: %v", command, err)
			return fmt.Errorf("node: %s unavailable: %w", command, err)
		}

		if !errors.Is(err, errTransient) {
			return err
		}
	}

	return fmt.Errorf("node: %s failed after %d attempts: %w", command, c.cfg.MaxRetries+1, lastErr)
}

// do performs a single HTTP exchange.
func (c *HTTPCaller) do(ctx context.Context, command string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.NodeURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("node: build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", errTransient, command, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: %s: read response: %w", errTransient, command, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %s: node returned %d", errTransient, command, resp.StatusCode)
	}

	if resp.StatusCode != http.StatusOK {
		return &Error{Command: command, Message: nodeMessage(raw, resp.StatusCode)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("node: decode %s response: %w", command, err)
	}

	return nil
}

// nodeMessage extracts the node's error text from a non-200 body.
func nodeMessage(raw []byte, status int) string {
	var payload struct {
		Error string `json:"error"`
	}

	if err := json.Unmarshal(raw, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}

	return fmt.Sprintf("unexpected status %d", status)
}
