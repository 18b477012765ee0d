package services

import (
	"context"
	"fmt"
	"time"

	"github.com/poyrazK/dnskitchen/internal/core/domain"
	"github.com/poyrazK/dnskitchen/internal/core/ports"
	"github.com/poyrazK/dnskitchen/internal/infrastructure/metrics"
)

// DefaultLookupTimeout bounds a single nameserver lookup.
const DefaultLookupTimeout = 3 * time.Second

type delegationChecker struct {
	resolver ports.NSResolver
	expected domain.NameserverSet
	timeout  time.Duration
}

// NewDelegationChecker reports a zone as delegated when any of its resolved
// NS hosts belongs to expected.
func NewDelegationChecker(resolver ports.NSResolver, expected domain.NameserverSet, timeout time.Duration) ports.DelegationChecker {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &delegationChecker{resolver: resolver, expected: expected, timeout: timeout}
}

func (c *delegationChecker) IsDelegated(ctx context.Context, name string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resolved, err := c.resolver.LookupNS(ctx, name)
	metrics.LookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LookupFailures.Inc()
		return false, fmt.Errorf("%w: %s: %v", domain.ErrUpstreamResolution, name, err)
	}
	return c.expected.Intersects(resolved), nil
}
