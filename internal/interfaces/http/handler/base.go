package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/walldriyan/pos11v-sub000/internal/domain/shared"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/dto"
	"github.com/walldriyan/pos11v-sub000/internal/interfaces/http/middleware"
)

// UserHeader identifies the acting cashier or manager on mutating calls
const UserHeader = "X-User-ID"

// BaseHandler provides shared response and error plumbing for handlers
type BaseHandler struct{}

// scope pulls the tenant scope resolved by the tenant middleware. A missing
// scope means the route was wired outside the tenant group, which is a
// server-side mistake, not caller error.
func (h *BaseHandler) scope(c *gin.Context) (shared.TenantScope, bool) {
	scope, ok := middleware.GetTenantScope(c)
	if !ok {
		h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "Tenant scope missing from request context")
	}
	return scope, ok
}

// userID resolves the acting user, tolerating its absence
func userID(c *gin.Context) uuid.UUID {
	header := c.GetHeader(UserHeader)
	if header == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(header)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// Success sends a 200 envelope
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a 200 envelope with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 envelope
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an explicit error response
func (h *BaseHandler) Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.NewErrorResponse(code, message, middleware.GetRequestID(c)))
}

// BadRequest reports a malformed or unbindable request
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// HandleError maps domain errors onto HTTP responses by their code and
// hides everything else behind a 500.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		h.Error(c, dto.HTTPStatusFor(domainErr.Code), domainErr.Code, domainErr.Message)
		return
	}
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, "An unexpected error occurred")
}
