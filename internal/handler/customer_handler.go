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

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

func (h *CustomerHandler) RegisterRoutes(router *gin.RouterGroup) {
	customers := router.Group("/customers", middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi, model.RoleSaljare))
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("", h.ListCustomers)
		customers.GET("/:id", h.GetCustomer)
		customers.PUT("/:id", h.UpdateCustomer)
		customers.DELETE("/:id", middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi), h.DeleteCustomer)
	}
}

// CreateCustomer handles POST /customers
// @Summary      Create customer
// @Description  Creates a new CRM customer record
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CustomerRequest  true  "Customer Payload"
// @Success      201      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /customers [post]
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, customer))
}

// ListCustomers handles GET /customers
// @Summary      List customers
// @Description  Retrieves a paginated customer list, optionally filtered by a search term on name, email or org number
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Search term"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /customers [get]
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	params := pagination.Parse(c)

	customers, total, err := h.customerService.ListCustomers(c.Request.Context(), c.Query("search"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"customers": customers,
		"total":     total,
		"page":      params.Page,
		"limit":     params.Limit,
	}))
}

// GetCustomer handles GET /customers/:id
// @Summary      Get customer
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response{data=model.Customer}
// @Failure      404  {object}  response.Response
// @Router       /customers/{id} [get]
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	customer, err := h.customerService.GetCustomer(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// UpdateCustomer handles PUT /customers/:id
// @Summary      Update customer
// @Tags         customers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                   true  "Customer ID"
// @Param        payload  body      service.CustomerRequest  true  "Customer Payload"
// @Success      200      {object}  response.Response{data=model.Customer}
// @Failure      400      {object}  response.Response
// @Router       /customers/{id} [put]
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, customer))
}

// DeleteCustomer handles DELETE /customers/:id
// @Summary      Delete customer
// @Description  Soft-deletes a customer record
// @Tags         customers
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Customer ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /customers/{id} [delete]
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	if err := h.customerService.DeleteCustomer(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Customer deleted"))
}
