package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// GormCampaignRepository implements promotion.CampaignRepository using GORM
type GormCampaignRepository struct {
	db *gorm.DB
}

// NewGormCampaignRepository creates a new GormCampaignRepository
func NewGormCampaignRepository(db *gorm.DB) *GormCampaignRepository {
	return &GormCampaignRepository{db: db}
}

// FindByID finds a campaign by its ID
func (r *GormCampaignRepository) FindByID(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*promotion.Campaign, error) {
	var campaign promotion.Campaign
	if err := scoped(sessionFrom(ctx, r.db), scope).
		First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// FindDefault returns the tenant's default active campaign
func (r *GormCampaignRepository) FindDefault(ctx context.Context, scope shared.TenantScope) (*promotion.Campaign, error) {
	var campaign promotion.Campaign
	if err := scoped(sessionFrom(ctx, r.db), scope).
		Where("is_default = ? AND is_active = ?", true, true).
		First(&campaign).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// FindAll lists campaigns for a tenant, newest first
func (r *GormCampaignRepository) FindAll(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]promotion.Campaign, error) {
	query := scoped(sessionFrom(ctx, r.db), scope).Model(&promotion.Campaign{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	orderBy := ValidateSortField(filter.OrderBy, CampaignSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var campaigns []promotion.Campaign
	if err := paging(query.Order(orderBy+" "+orderDir), filter.Page, filter.PageSize).
		Find(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

// Save persists the campaign. When the campaign is flagged default, any
// previous default of the same tenant is cleared in the same transaction
// so at most one default exists per tenant.
func (r *GormCampaignRepository) Save(ctx context.Context, campaign *promotion.Campaign) error {
	db := sessionFrom(ctx, r.db)
	return db.Transaction(func(tx *gorm.DB) error {
		if campaign.IsDefault {
			if err := tx.Model(&promotion.Campaign{}).
				Where("tenant_id = ? AND is_default = ? AND id <> ?", campaign.TenantID, true, campaign.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Save(campaign).Error
	})
}
