package handler

import (
	"net/http"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TimeLogHandler struct {
	timeLogService service.TimeLogService
}

func NewTimeLogHandler(timeLogService service.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{timeLogService: timeLogService}
}

func (h *TimeLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi, model.RoleSaljare)

	timeLogs := router.Group("/time-logs", staff)
	{
		timeLogs.POST("", h.CreateTimeLog)
		timeLogs.PUT("/:id/stop", h.StopTimeLog)
		timeLogs.GET("/employee/:userId", h.ListByEmployee)
	}
}

// CreateTimeLog handles POST /time-logs
// @Summary      Create time log
// @Description  Records a work interval, either closed or still running (no end time)
// @Tags         time-logs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTimeLogRequest  true  "Time Log Payload"
// @Success      201      {object}  response.Response{data=service.TimeLogResponse}
// @Failure      400      {object}  response.Response
// @Router       /time-logs [post]
func (h *TimeLogHandler) CreateTimeLog(c *gin.Context) {
	var req service.CreateTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	log, err := h.timeLogService.CreateTimeLog(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, log))
}

// StopTimeLog handles PUT /time-logs/:id/stop
// @Summary      Stop time log
// @Description  Closes a running time log, optionally overriding end time and break minutes
// @Tags         time-logs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true   "Time Log ID"
// @Param        payload  body      service.StopTimeLogRequest  false  "Stop Payload"
// @Success      200      {object}  response.Response{data=service.TimeLogResponse}
// @Failure      400      {object}  response.Response
// @Router       /time-logs/{id}/stop [put]
func (h *TimeLogHandler) StopTimeLog(c *gin.Context) {
	var req service.StopTimeLogRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
	}

	log, err := h.timeLogService.StopTimeLog(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, log))
}

// ListByEmployee handles GET /time-logs/employee/:userId
// @Summary      List time logs for an employee
// @Tags         time-logs
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true   "User ID"
// @Param        year    query     int     false  "Year (default current)"
// @Param        month   query     int     false  "Month 1-12 (default current)"
// @Success      200     {object}  response.Response{data=[]service.TimeLogResponse}
// @Failure      400     {object}  response.Response
// @Router       /time-logs/employee/{userId} [get]
func (h *TimeLogHandler) ListByEmployee(c *gin.Context) {
	year, month := period(c)

	logs, err := h.timeLogService.ListByEmployee(c.Request.Context(), c.Param("userId"), year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
