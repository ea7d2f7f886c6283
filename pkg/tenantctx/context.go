package tenantctx

import (
	"context"
	"strings"
)

// Tenant identifies the caller's site and company. Every core read is scoped
// by it; adapters must never return rows belonging to another tenant.
type Tenant struct {
	Site        string
	CompanyCode string
}

func (t Tenant) IsZero() bool {
	return strings.TrimSpace(t.Site) == "" || strings.TrimSpace(t.CompanyCode) == ""
}

// TenantContextKey is the request context key for the active tenant.
type TenantContextKey struct{}

// WithTenant stores the tenant in the context.
func WithTenant(ctx context.Context, tenant Tenant) context.Context {
	return context.WithValue(ctx, TenantContextKey{}, tenant)
}

// TenantFromContext returns the tenant from context, if set.
func TenantFromContext(ctx context.Context) (Tenant, bool) {
	if ctx == nil {
		return Tenant{}, false
	}
	tenant, ok := ctx.Value(TenantContextKey{}).(Tenant)
	if !ok || tenant.IsZero() {
		return Tenant{}, false
	}
	return tenant, true
}
