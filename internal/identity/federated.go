package identity

import (
	"context"
	"time"
)

// SimulatedProvider stands in for a real federated identity provider.
// It asserts a fixed profile after a short delay, which is enough for
// the login flow, the pending-account path and the tests.
type SimulatedProvider struct {
	ProfileResult ProviderProfile
	Delay         time.Duration
	Err           error
}

func NewSimulatedProvider(profile ProviderProfile) *SimulatedProvider {
	return &SimulatedProvider{
		ProfileResult: profile,
		Delay:         100 * time.Millisecond,
	}
}

func (p *SimulatedProvider) Profile(ctx context.Context) (ProviderProfile, error) {
	if p.Delay > 0 {
		select {
		case <-time.After(p.Delay):
		case <-ctx.Done():
			return ProviderProfile{}, ctx.Err()
		}
	}
	if p.Err != nil {
		return ProviderProfile{}, p.Err
	}
	return p.ProfileResult, nil
}
