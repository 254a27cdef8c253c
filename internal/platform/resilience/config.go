package resilience

import (
	"fmt"
	"time"
)

// CircuitBreakerConfig tunes one breaker around an outbound dependency. The
// token introspection client and the live push client each carry their own,
// loaded from IDENTITY_CIRCUIT_* and LIVE_PUSH_CIRCUIT_*.
type CircuitBreakerConfig struct {
	Enabled bool
	// FailureThreshold is the run of consecutive failures that opens the breaker.
	FailureThreshold int
	// OpenTimeout is how long an open breaker fails fast before probing again.
	OpenTimeout time.Duration
	// HalfOpenMaxReq caps concurrent probe calls while half-open.
	HalfOpenMaxReq int
}

// DefaultCircuitBreakerConfig opens after 5 failures and retries after 15s.
func DefaultCircuitBreakerConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 5,
		OpenTimeout:      15 * time.Second,
		HalfOpenMaxReq:   2,
	}
}

// Validate reports settings that NormalizeCircuitBreakerConfig would replace
// with defaults. Config loading uses it so a bad env value fails at boot.
func (c CircuitBreakerConfig) Validate() error {
	switch {
	case c.FailureThreshold < 1:
		return fmt.Errorf("failure threshold must be >= 1, got %d", c.FailureThreshold)
	case c.OpenTimeout <= 0:
		return fmt.Errorf("open timeout must be > 0, got %s", c.OpenTimeout)
	case c.HalfOpenMaxReq < 1:
		return fmt.Errorf("half-open max requests must be >= 1, got %d", c.HalfOpenMaxReq)
	}
	return nil
}

// NormalizeCircuitBreakerConfig fills zero or negative values from the
// defaults. Clients built in tests often set only the fields they exercise.
func NormalizeCircuitBreakerConfig(cfg CircuitBreakerConfig) CircuitBreakerConfig {
	defaults := DefaultCircuitBreakerConfig()
	if cfg.FailureThreshold < 1 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenMaxReq < 1 {
		cfg.HalfOpenMaxReq = defaults.HalfOpenMaxReq
	}
	return cfg
}
