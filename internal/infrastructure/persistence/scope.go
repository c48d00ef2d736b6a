package persistence

import (
	"gorm.io/gorm"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// scoped applies tenant filtering to a query. Platform scopes bypass the
// filter entirely.
func scoped(q *gorm.DB, scope shared.TenantScope) *gorm.DB {
	if scope.IsPlatform() {
		return q
	}
	return q.Where("tenant_id = ?", scope.TenantID())
}

// paging normalizes page/size and applies LIMIT/OFFSET
func paging(q *gorm.DB, page, pageSize int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return q.Limit(pageSize).Offset((page - 1) * pageSize)
}
