package calendar

import "context"

// Provider resolves the policy of a tenant
type Provider interface {
	PolicyFor(ctx context.Context, tenantID string) (*Policy, error)
}

type staticProvider struct {
	fallback *Policy
	tenants  map[string]*Policy
}

// NewStaticProvider serves per-tenant overrides and falls back to a default policy
func NewStaticProvider(fallback *Policy, tenants map[string]*Policy) Provider {
	if fallback == nil {
		fallback = DefaultPolicy()
	}
	copied := make(map[string]*Policy, len(tenants))
	for id, p := range tenants {
		copied[id] = p
	}
	return &staticProvider{fallback: fallback, tenants: copied}
}

func (p *staticProvider) PolicyFor(_ context.Context, tenantID string) (*Policy, error) {
	if policy, ok := p.tenants[tenantID]; ok {
		return policy, nil
	}
	return p.fallback, nil
}
