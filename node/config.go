package node

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config controls the HTTP transport to a node.
type Config struct {
	// NodeURL is the node's command endpoint.
	NodeURL string `validate:"required,url"`

	// Timeout bounds a single HTTP exchange, not the whole retry loop.
	Timeout time.Duration `validate:"gt=0"`

	// MaxRetries is the number of additional attempts after the first on
	// transient failures. Node-reported errors are never retried.
	MaxRetries int `validate:"gte=0,lte=10"`

	// RetryBase is the base delay for exponential backoff between retries.
	RetryBase time.Duration `validate:"gte=0"`

	// BreakerConsecutiveFailures is the consecutive-failure count that
	// trips the circuit breaker.
	BreakerConsecutiveFailures uint32 `validate:"gte=1"`

	// BreakerCooldown is how long the breaker stays open before probing.
	BreakerCooldown time.Duration `validate:"gt=0"`
}

// DefaultConfig returns the transport defaults for a local node.
func DefaultConfig() Config {
	return Config{
		NodeURL:                    "http://localhost:14265",
		Timeout:                    30 * time.Second,
		MaxRetries:                 3,
		RetryBase:                  250 * time.Millisecond,
		BreakerConsecutiveFailures: 5,
		BreakerCooldown:            15 * time.Second,
	}
}

var configValidator = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration against its constraints.
func (c Config) Validate() error {
	if err := configValidator.Struct(c); err != nil {
		return fmt.Errorf("node: invalid config: %w", err)
	}

	return nil
}
