package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plantops/kpihub/pkg/tenantctx"
)

const (
	headerSite        = "X-Site"
	headerCompanyCode = "X-Company-Code"
)

// TenantRequired resolves the tenant set on the request by the upstream
// authentication gateway and threads it into the request context. Requests
// without a complete tenant are rejected.
func TenantRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenant := tenantctx.Tenant{
			Site:        c.GetHeader(headerSite),
			CompanyCode: c.GetHeader(headerCompanyCode),
		}
		if tenant.IsZero() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing tenant context",
			})
			return
		}

		ctx := tenantctx.WithTenant(c.Request.Context(), tenant)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
