package handler

import (
	"net/http"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/pagination"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/audit-logs")
	group.Use(middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi))
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs handles GET /audit-logs
// @Summary      Get audit logs
// @Description  Retrieves paginated audit entries, optionally filtered by action
// @Tags         audit
// @Security     BearerAuth
// @Produce      json
// @Param        action  query     string  false  "Filter by action (e.g. CREATE_INVOICE)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Router       /audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.List(c.Request.Context(), c.Query("action"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to retrieve audit logs: "+err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
