package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	promotionapp "github.com/walldriyan/pos11v-sub000/internal/application/promotion"
	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
)

// CampaignHandler exposes discount campaign configuration
type CampaignHandler struct {
	BaseHandler
	campaigns *promotionapp.CampaignService
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaigns *promotionapp.CampaignService) *CampaignHandler {
	return &CampaignHandler{campaigns: campaigns}
}

// RegisterRoutes wires the campaign endpoints
func (h *CampaignHandler) RegisterRoutes(rg *gin.RouterGroup) {
	campaigns := rg.Group("/campaigns")
	{
		campaigns.POST("", h.SaveCampaign)
		campaigns.GET("", h.ListCampaigns)
		campaigns.GET("/default", h.GetDefaultCampaign)
		campaigns.GET("/:id", h.GetCampaign)
	}
}

// SaveCampaign creates or updates a campaign. Marking a campaign default
// clears the tenant's previous default.
func (h *CampaignHandler) SaveCampaign(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req promotionapp.SaveCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaign, err := h.campaigns.SaveCampaign(c.Request.Context(), scope, req, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// GetCampaign fetches one campaign
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid campaign ID")
		return
	}

	campaign, err := h.campaigns.GetCampaign(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// GetDefaultCampaign returns the tenant's default campaign, or null when
// none is configured.
func (h *CampaignHandler) GetDefaultCampaign(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	campaign, err := h.campaigns.DefaultCampaign(c.Request.Context(), scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaign)
}

// ListCampaignsQuery holds the campaign listing parameters
type ListCampaignsQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
	Search   string `form:"search"`
}

// ListCampaigns lists the tenant's campaigns
func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var query ListCampaignsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	campaigns, err := h.campaigns.ListCampaigns(c.Request.Context(), scope, shared.Filter{
		Page:     query.Page,
		PageSize: query.PageSize,
		Search:   query.Search,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, campaigns)
}
