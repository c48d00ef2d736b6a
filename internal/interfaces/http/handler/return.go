package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	salesapp "github.com/walldriyan/pos11v-sub000/internal/application/sales"
)

// ReturnHandler exposes return processing and the return undo ledger
type ReturnHandler struct {
	BaseHandler
	returns *salesapp.ReturnService
}

// NewReturnHandler creates a new ReturnHandler
func NewReturnHandler(returns *salesapp.ReturnService) *ReturnHandler {
	return &ReturnHandler{returns: returns}
}

// RegisterRoutes wires the return endpoints
func (h *ReturnHandler) RegisterRoutes(rg *gin.RouterGroup) {
	returns := rg.Group("/returns")
	{
		returns.POST("", h.ProcessReturn)
		returns.POST("/:masterId/undo/:entryId", h.UndoReturn)
	}
}

// ProcessReturn takes quantities back, restores stock and reprices the
// kept remainder under the sale's original campaign.
func (h *ReturnHandler) ProcessReturn(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	var req salesapp.ProcessReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.returns.ProcessReturn(c.Request.Context(), scope, req, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// UndoReturn cancels one logged return entry and rebuilds the adjusted
// state from the remaining active entries.
func (h *ReturnHandler) UndoReturn(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}

	masterID, err := uuid.Parse(c.Param("masterId"))
	if err != nil {
		h.BadRequest(c, "Invalid master sale record ID")
		return
	}
	entryID, err := uuid.Parse(c.Param("entryId"))
	if err != nil {
		h.BadRequest(c, "Invalid return entry ID")
		return
	}

	record, err := h.returns.UndoReturn(c.Request.Context(), scope, masterID, entryID, userID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}
