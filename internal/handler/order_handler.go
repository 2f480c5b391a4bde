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

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi, model.RoleSaljare)

	orders := router.Group("/orders", staff)
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
	}

	quotes := router.Group("/quotes", staff)
	{
		quotes.POST("", h.CreateQuote)
		quotes.GET("", h.ListQuotes)
		quotes.POST("/:id/send", h.SendQuote)
		quotes.PUT("/:id/status", h.SetQuoteStatus)
	}
}

// CreateOrder handles POST /orders
// @Summary      Create order
// @Description  Creates a new order with optional salesperson attribution
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateOrderRequest  true  "Order Payload"
// @Success      201      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, order))
}

// ListOrders handles GET /orders
// @Summary      List orders
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (NEW, IN_PROGRESS, READY_TO_INVOICE, INVOICE_COMPLETE, CANCELLED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(c *gin.Context) {
	params := pagination.Parse(c)

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"orders": orders,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// GetOrder handles GET /orders/:id
// @Summary      Get order
// @Tags         orders
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Order ID"
// @Success      200  {object}  response.Response{data=model.Order}
// @Failure      404  {object}  response.Response
// @Router       /orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// UpdateOrder handles PUT /orders/:id
// @Summary      Update order
// @Description  Updates order fields including status and commission attribution
// @Tags         orders
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Order ID"
// @Param        payload  body      service.UpdateOrderRequest  true  "Order Payload"
// @Success      200      {object}  response.Response{data=model.Order}
// @Failure      400      {object}  response.Response
// @Router       /orders/{id} [put]
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, order))
}

// CreateQuote handles POST /quotes
// @Summary      Create quote
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuoteRequest  true  "Quote Payload"
// @Success      201      {object}  response.Response{data=model.Quote}
// @Failure      400      {object}  response.Response
// @Router       /quotes [post]
func (h *OrderHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.orderService.CreateQuote(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// ListQuotes handles GET /quotes
// @Summary      List quotes
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (DRAFT, SENT, ACCEPTED, REJECTED)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=object}
// @Failure      500     {object}  response.Response
// @Router       /quotes [get]
func (h *OrderHandler) ListQuotes(c *gin.Context) {
	params := pagination.Parse(c)

	quotes, total, err := h.orderService.ListQuotes(c.Request.Context(), c.Query("status"), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// SendQuote handles POST /quotes/:id/send
// @Summary      Send quote
// @Description  Emails the quote to the customer and marks it SENT
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=model.Quote}
// @Failure      400  {object}  response.Response
// @Router       /quotes/{id}/send [post]
func (h *OrderHandler) SendQuote(c *gin.Context) {
	quote, err := h.orderService.SendQuote(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

type quoteStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACCEPTED REJECTED"`
}

// SetQuoteStatus handles PUT /quotes/:id/status
// @Summary      Accept or reject quote
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Quote ID"
// @Param        payload  body      quoteStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=model.Quote}
// @Failure      400      {object}  response.Response
// @Router       /quotes/{id}/status [put]
func (h *OrderHandler) SetQuoteStatus(c *gin.Context) {
	var req quoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	quote, err := h.orderService.SetQuoteStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}
