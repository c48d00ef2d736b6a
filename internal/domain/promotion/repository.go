package promotion

import (
	"context"

	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// CampaignRepository provides access to discount campaigns
type CampaignRepository interface {
	FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*Campaign, error)
	// FindDefault returns the tenant's default active campaign, or
	// shared.ErrNotFound when none is configured.
	FindDefault(ctx context.Context, scope shared.TenantScope) (*Campaign, error)
	FindAll(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]Campaign, error)
	// Save persists the campaign. Implementations must clear any previous
	// default for the tenant in the same transaction when IsDefault is set.
	Save(ctx context.Context, campaign *Campaign) error
}
