package tenantctx

import (
	"context"
	"testing"
)

func TestTenantRoundTrip(t *testing.T) {
	tenant := Tenant{Site: "plant-a", CompanyCode: "acme"}
	ctx := WithTenant(context.Background(), tenant)

	got, ok := TenantFromContext(ctx)
	if !ok || got != tenant {
		t.Fatalf("got %+v, ok=%v", got, ok)
	}
}

func TestTenantFromEmptyContext(t *testing.T) {
	if _, ok := TenantFromContext(context.Background()); ok {
		t.Fatalf("expected no tenant on a bare context")
	}
}

func TestIsZero(t *testing.T) {
	cases := []struct {
		tenant Tenant
		want   bool
	}{
		{Tenant{}, true},
		{Tenant{Site: "plant-a"}, true},
		{Tenant{CompanyCode: "acme"}, true},
		{Tenant{Site: "plant-a", CompanyCode: "acme"}, false},
	}
	for _, tc := range cases {
		if got := tc.tenant.IsZero(); got != tc.want {
			t.Fatalf("IsZero(%+v) = %v, want %v", tc.tenant, got, tc.want)
		}
	}
}
