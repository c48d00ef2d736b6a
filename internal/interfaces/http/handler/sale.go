package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/walldriyan/pos11v-sub000/internal/application/sales"
)

// SaleHandler exposes sale creation and the sale read model
type SaleHandler struct {
	BaseHandler
	sales   *salesapp.SaleService
	queries *salesapp.SaleQueryService
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales *salesapp.SaleService, queries *salesapp.SaleQueryService) *SaleHandler {
	return &SaleHandler{sales: sales, queries: queries}
}

// RegisterRoutes wires the sale endpoints
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", h.CreateSale)
		sales.GET("", h.ListSales)
		sales.GET("/:id", h.GetSale)
		sales.GET("/context/:billNumber", h.GetSaleContext)
	}
}

// CreateSale prices the cart, reserves stock and persists the pristine
// original in one transaction.
func (h *SaleHandler) CreateSale(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req salesapp.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.sales.CreateSale(c.Request.Context(), scope, req, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// GetSale fetches one sale record by ID
func (h *SaleHandler) GetSale(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid sale record ID")
		return
	}

	record, err := h.queries.GetSaleRecord(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// GetSaleContext resolves a bill number to its pristine original and the
// currently active record.
func (h *SaleHandler) GetSaleContext(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	billNumber := c.Param("billNumber")
	if billNumber == "" {
		h.BadRequest(c, "Bill number is required")
		return
	}

	context, err := h.queries.GetSaleContext(c.Request.Context(), scope, billNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, context)
}

// ListSales pages through pristine originals, newest first
func (h *SaleHandler) ListSales(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var filter salesapp.SaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.queries.ListSales(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
