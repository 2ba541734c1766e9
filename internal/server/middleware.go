package server

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallfirma/fibua/pkg/tenantctx"
)

const HeaderOrg = "X-Org-ID"

// OrgContext resolves the active organization from the request header and
// injects it into the request context. Everything behind it operates inside
// that tenant; requests without a valid header are rejected up front.
func OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderOrg))
		if raw == "" {
			AbortWithError(c, ErrMissingOrg)
			return
		}

		orgID, ok := tenantctx.ParseOrgID(raw)
		if !ok {
			AbortWithError(c, ErrMissingOrg)
			return
		}

		ctx := tenantctx.WithOrg(c.Request.Context(), orgID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
