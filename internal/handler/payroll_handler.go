package handler

import (
	"net/http"
	"strconv"
	"time"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type PayrollHandler struct {
	payrollService service.PayrollService
}

func NewPayrollHandler(payrollService service.PayrollService) *PayrollHandler {
	return &PayrollHandler{payrollService: payrollService}
}

func (h *PayrollHandler) RegisterRoutes(router *gin.RouterGroup) {
	finance := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi)

	payroll := router.Group("/payroll", finance)
	{
		payroll.PUT("/profiles", h.UpsertProfile)
		payroll.GET("/profiles/:userId", h.GetProfile)
		payroll.GET("/summary", h.GetSummary)
		payroll.GET("/employees/:userId/summary", h.GetEmployeeSummary)
		payroll.POST("/employees/:userId/approve", h.ApproveTimesheet)
	}
}

// period reads year/month query parameters, defaulting to the current month.
func period(c *gin.Context) (int, int) {
	now := time.Now()
	year, _ := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	month, _ := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	return year, month
}

// UpsertProfile handles PUT /payroll/profiles
// @Summary      Upsert employee profile
// @Description  Creates or replaces the compensation profile for a user
// @Tags         payroll
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.UpsertEmployeeProfileRequest  true  "Profile Payload"
// @Success      200      {object}  response.Response{data=service.EmployeeProfileResponse}
// @Failure      400      {object}  response.Response
// @Router       /payroll/profiles [put]
func (h *PayrollHandler) UpsertProfile(c *gin.Context) {
	var req service.UpsertEmployeeProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	profile, err := h.payrollService.UpsertEmployeeProfile(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// GetProfile handles GET /payroll/profiles/:userId
// @Summary      Get employee profile
// @Tags         payroll
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  response.Response{data=service.EmployeeProfileResponse}
// @Failure      404     {object}  response.Response
// @Router       /payroll/profiles/{userId} [get]
func (h *PayrollHandler) GetProfile(c *gin.Context) {
	profile, err := h.payrollService.GetEmployeeProfile(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, profile))
}

// GetSummary handles GET /payroll/summary
// @Summary      Organization payroll summary
// @Description  Computes pay, commission and tax estimates for every employee in the given month
// @Tags         payroll
// @Security     BearerAuth
// @Produce      json
// @Param        year   query     int  false  "Year (default current)"
// @Param        month  query     int  false  "Month 1-12 (default current)"
// @Success      200    {object}  response.Response{data=service.PayrollSummary}
// @Failure      400    {object}  response.Response
// @Router       /payroll/summary [get]
func (h *PayrollHandler) GetSummary(c *gin.Context) {
	year, month := period(c)

	summary, err := h.payrollService.GetSummary(c.Request.Context(), year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

// GetEmployeeSummary handles GET /payroll/employees/:userId/summary
// @Summary      Employee payroll summary
// @Tags         payroll
// @Security     BearerAuth
// @Produce      json
// @Param        userId  path      string  true   "User ID"
// @Param        year    query     int     false  "Year (default current)"
// @Param        month   query     int     false  "Month 1-12 (default current)"
// @Success      200     {object}  response.Response{data=service.EmployeePayrollSummary}
// @Failure      400     {object}  response.Response
// @Router       /payroll/employees/{userId}/summary [get]
func (h *PayrollHandler) GetEmployeeSummary(c *gin.Context) {
	year, month := period(c)

	summary, err := h.payrollService.GetEmployeeSummary(c.Request.Context(), c.Param("userId"), year, month)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, summary))
}

type approveTimesheetRequest struct {
	Year  int    `json:"year" binding:"required"`
	Month int    `json:"month" binding:"required,min=1,max=12"`
	Note  string `json:"note"`
}

// ApproveTimesheet handles POST /payroll/employees/:userId/approve
// @Summary      Approve timesheet
// @Description  Marks all of the employee's unapproved time logs in the month as approved
// @Tags         payroll
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        userId   path      string                   true  "User ID"
// @Param        payload  body      approveTimesheetRequest  true  "Approval Payload"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /payroll/employees/{userId}/approve [post]
func (h *PayrollHandler) ApproveTimesheet(c *gin.Context) {
	var req approveTimesheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	approved, err := h.payrollService.ApproveTimesheet(c.Request.Context(), actorID(c), c.Param("userId"), req.Year, req.Month, req.Note)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"logs_approved": approved,
	}))
}
