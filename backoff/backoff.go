package backoff

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// maxShift caps the exponent so the multiplier fits in int64.
const maxShift = 62

// Exponential returns base * 2^attempt with overflow protection.
// Negative attempts are treated as 0.
func Exponential(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	if attempt < 0 {
		attempt = 0
	} else if attempt > maxShift {
		attempt = maxShift
	}

	multiplier := int64(1) << attempt
	if int64(base) > math.MaxInt64/multiplier {
		return time.Duration(math.MaxInt64)
	}

	return time.Duration(int64(base) * multiplier)
}

// Delay returns a random duration in [0, base * 2^attempt), the "full
// jitter" strategy. Jitter here spreads retry load; it is not a security
// boundary, so math/rand is sufficient.
func Delay(base time.Duration, attempt int) time.Duration {
	ceiling := Exponential(base, attempt)
	if ceiling <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(ceiling))) // #nosec G404 -- jitter, not key material
}

// Sleep waits for the given duration but returns early if the context is
// done. Zero or negative durations return immediately.
func Sleep(ctx context.Context, duration time.Duration) error {
	if duration <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("backoff interrupted: %w", ctx.Err())
	}
}
