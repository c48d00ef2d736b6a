package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/walldriyan/pos11v-sub000/internal/application/sales"
)

// CreditHandler exposes the credit ledger: installments and credit listings
type CreditHandler struct {
	BaseHandler
	credit *salesapp.CreditService
}

// NewCreditHandler creates a new CreditHandler
func NewCreditHandler(credit *salesapp.CreditService) *CreditHandler {
	return &CreditHandler{credit: credit}
}

// RegisterRoutes wires the credit endpoints
func (h *CreditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credit := rg.Group("/credit")
	{
		credit.POST("/payments", h.RecordPayment)
		credit.DELETE("/installments/:id", h.DeleteInstallment)
		credit.GET("/sales", h.ListCreditSales)
	}
}

// RecordPayment applies an installment against a credit sale's balance
func (h *CreditHandler) RecordPayment(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req salesapp.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	record, err := h.credit.RecordPayment(c.Request.Context(), scope, req, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// DeleteInstallment removes a payment and recomputes the ledger
func (h *CreditHandler) DeleteInstallment(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID")
		return
	}

	record, err := h.credit.DeleteInstallment(c.Request.Context(), scope, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// ListCreditSales pages through credit sales filtered by status, customer
// and date range.
func (h *CreditHandler) ListCreditSales(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var filter salesapp.CreditSaleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	page, err := h.credit.ListCreditSales(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}
