package handler

import (
	"net/http"
	"time"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	reminderService service.ReminderService
}

func NewReminderHandler(reminderService service.ReminderService) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService}
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	finance := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi)

	reminders := router.Group("/reminders", finance)
	{
		reminders.POST("/sweep", h.RunSweep)
		reminders.GET("/emails/:entityId", h.ListEmailLogs)
	}
}

// RunSweep handles POST /reminders/sweep
// @Summary      Run reminder sweep
// @Description  Sends due quote and invoice reminders and marks past-due invoices OVERDUE. Intended to be hit by a scheduler once a day; running it twice is harmless.
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=service.SweepResult}
// @Failure      500  {object}  response.Response
// @Router       /reminders/sweep [post]
func (h *ReminderHandler) RunSweep(c *gin.Context) {
	result, err := h.reminderService.RunSweep(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListEmailLogs handles GET /reminders/emails/:entityId
// @Summary      List sent emails for an entity
// @Description  Returns the outbound email log for a quote or invoice
// @Tags         reminders
// @Security     BearerAuth
// @Produce      json
// @Param        entityId  path      string  true  "Quote or Invoice ID"
// @Success      200       {object}  response.Response{data=[]model.EmailLog}
// @Failure      400       {object}  response.Response
// @Router       /reminders/emails/{entityId} [get]
func (h *ReminderHandler) ListEmailLogs(c *gin.Context) {
	logs, err := h.reminderService.ListEmailLogs(c.Request.Context(), c.Param("entityId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
