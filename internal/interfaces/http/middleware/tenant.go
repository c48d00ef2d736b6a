package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/dto"
)

const (
	// TenantHeader carries the caller's tenant on every request
	TenantHeader = "X-Tenant-ID"
	// tenantScopeKey is the gin context key holding the resolved scope
	tenantScopeKey = "tenant_scope"
)

// TenantConfig controls tenant resolution
type TenantConfig struct {
	// SkipPaths bypass tenant resolution entirely (health checks etc.)
	SkipPaths []string
}

// DefaultTenantConfig skips the operational endpoints
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/healthz", "/ready"},
	}
}

// Tenant resolves the caller's tenant scope from the X-Tenant-ID header
// and fails fast when no valid tenant is supplied. Every scoped handler
// downstream can then assume a usable scope.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns the tenant middleware with custom skip paths
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		header := c.GetHeader(TenantHeader)
		if header == "" {
			abortTenantRequired(c)
			return
		}
		tenantID, err := uuid.Parse(header)
		if err != nil {
			abortTenantRequired(c)
			return
		}
		scope, err := shared.TenantOf(tenantID)
		if err != nil {
			abortTenantRequired(c)
			return
		}

		c.Set(tenantScopeKey, scope)
		c.Next()
	}
}

func abortTenantRequired(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(
		shared.ErrTenantRequired.Code,
		shared.ErrTenantRequired.Message,
		GetRequestID(c),
	))
}

// GetTenantScope reads the scope resolved by Tenant. The boolean is false
// on skip-listed paths where no scope was resolved.
func GetTenantScope(c *gin.Context) (shared.TenantScope, bool) {
	value, exists := c.Get(tenantScopeKey)
	if !exists {
		return shared.TenantScope{}, false
	}
	scope, ok := value.(shared.TenantScope)
	return scope, ok
}
