package promotion

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/walldriyan/pos11v-sub000/internal/domain/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// CampaignCache holds the resolved default campaign per tenant so reads
// skip the database. Saves invalidate it.
type CampaignCache interface {
	GetDefault(ctx context.Context, tenantID uuid.UUID) (*promotion.Campaign, error)
	SetDefault(ctx context.Context, tenantID uuid.UUID, campaign *promotion.Campaign) error
	InvalidateDefault(ctx context.Context, tenantID uuid.UUID) error
}

// SaveCampaignRequest carries the full campaign configuration
type SaveCampaignRequest struct {
	ID                      *uuid.UUID                   `json:"id,omitempty"`
	Name                    string                       `json:"name" binding:"required,max=100"`
	IsActive                bool                         `json:"isActive"`
	IsDefault               bool                         `json:"isDefault"`
	IsOneTimePerTransaction bool                         `json:"isOneTimePerTransaction"`
	CartValueRule           *promotion.RuleConfig        `json:"cartValueRule,omitempty"`
	CartQuantityRule        *promotion.RuleConfig        `json:"cartQuantityRule,omitempty"`
	DefaultRules            promotion.DefaultLineRules   `json:"defaultRules"`
	ProductOverrides        promotion.ProductOverrideList `json:"productOverrides,omitempty"`
	BuyGetRules             promotion.BuyGetRuleList     `json:"buyGetRules,omitempty"`
}

// CampaignService manages campaign configuration and the default-campaign
// cache that the sale path reads.
type CampaignService struct {
	campaigns promotion.CampaignRepository
	cache     CampaignCache
	logger    *zap.Logger
}

func NewCampaignService(campaigns promotion.CampaignRepository, cache CampaignCache, logger *zap.Logger) *CampaignService {
	return &CampaignService{campaigns: campaigns, cache: cache, logger: logger}
}

// SaveCampaign validates and persists a campaign, then drops the tenant's
// cached default so the next sale sees the new configuration.
func (s *CampaignService) SaveCampaign(ctx context.Context, scope shared.TenantScope, req SaveCampaignRequest, userID uuid.UUID) (*promotion.Campaign, error) {
	var campaign *promotion.Campaign
	if req.ID != nil {
		existing, err := s.campaigns.FindByID(ctx, scope, *req.ID)
		if err != nil {
			return nil, err
		}
		campaign = existing
		campaign.Name = req.Name
	} else {
		created, err := promotion.NewCampaign(scope.TenantID(), req.Name)
		if err != nil {
			return nil, err
		}
		created.SetCreatedBy(userID)
		campaign = created
	}

	campaign.IsActive = req.IsActive
	campaign.IsOneTimePerTransaction = req.IsOneTimePerTransaction
	campaign.CartValueRule = req.CartValueRule
	campaign.CartQuantityRule = req.CartQuantityRule
	campaign.DefaultRules = req.DefaultRules
	campaign.ProductOverrides = req.ProductOverrides
	campaign.BuyGetRules = req.BuyGetRules
	if req.IsDefault {
		campaign.MarkDefault()
	} else {
		campaign.ClearDefault()
	}

	if err := campaign.Validate(); err != nil {
		return nil, err
	}
	if err := s.campaigns.Save(ctx, campaign); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateDefault(ctx, scope.TenantID()); err != nil {
		s.logger.Warn("campaign cache invalidation failed",
			zap.String("tenant_id", scope.TenantID().String()), zap.Error(err))
	}

	s.logger.Info("campaign saved",
		zap.String("campaign_id", campaign.ID.String()),
		zap.String("name", campaign.Name),
		zap.Bool("is_default", campaign.IsDefault))
	return campaign, nil
}

// GetCampaign fetches one campaign
func (s *CampaignService) GetCampaign(ctx context.Context, scope shared.TenantScope, id uuid.UUID) (*promotion.Campaign, error) {
	return s.campaigns.FindByID(ctx, scope, id)
}

// ListCampaigns lists the tenant's campaigns
func (s *CampaignService) ListCampaigns(ctx context.Context, scope shared.TenantScope, filter shared.Filter) ([]promotion.Campaign, error) {
	return s.campaigns.FindAll(ctx, scope, filter)
}

// DefaultCampaign resolves the tenant's default campaign through the
// cache, falling back to the repository on a miss. Returns nil when the
// tenant has no default configured.
func (s *CampaignService) DefaultCampaign(ctx context.Context, scope shared.TenantScope) (*promotion.Campaign, error) {
	if cached, err := s.cache.GetDefault(ctx, scope.TenantID()); err == nil && cached != nil {
		return cached, nil
	} else if err != nil {
		s.logger.Warn("campaign cache read failed, falling back to database", zap.Error(err))
	}

	campaign, err := s.campaigns.FindDefault(ctx, scope)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if err := s.cache.SetDefault(ctx, scope.TenantID(), campaign); err != nil {
		s.logger.Warn("campaign cache write failed", zap.Error(err))
	}
	return campaign, nil
}
