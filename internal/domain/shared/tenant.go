package shared

import "github.com/google/uuid"

// TenantScope identifies whose data an operation may touch. A normal user
// always carries a concrete tenant ID; the platform operator carries the
// unscoped sentinel and bypasses tenant filtering entirely. Callers that
// cannot resolve a tenant for a standard user must fail fast with
// ErrTenantRequired instead of constructing a scope.
type TenantScope struct {
	id       uuid.UUID
	platform bool
}

// TenantOf returns a scope restricted to a single tenant
func TenantOf(tenantID uuid.UUID) (TenantScope, error) {
	if tenantID == uuid.Nil {
		return TenantScope{}, ErrTenantRequired
	}
	return TenantScope{id: tenantID}, nil
}

// PlatformScope returns the unscoped sentinel used by platform operators
func PlatformScope() TenantScope {
	return TenantScope{platform: true}
}

// IsPlatform reports whether this scope bypasses tenant filtering
func (s TenantScope) IsPlatform() bool {
	return s.platform
}

// TenantID returns the concrete tenant ID. Only valid when !IsPlatform().
func (s TenantScope) TenantID() uuid.UUID {
	return s.id
}

// Matches reports whether a record owned by ownerTenant is visible in scope
func (s TenantScope) Matches(ownerTenant uuid.UUID) bool {
	return s.platform || s.id == ownerTenant
}
