package handler

import (
	"net/http"
	"time"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/pagination"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	exportService  service.ExportService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, exportService service.ExportService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		exportService:  exportService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	staff := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi, model.RoleSaljare)
	finance := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi)

	invoices := router.Group("/invoices")
	{
		invoices.GET("", staff, h.ListInvoices)
		invoices.GET("/export", finance, h.ExportInvoices)
		invoices.GET("/:id", staff, h.GetInvoice)
		invoices.POST("", finance, h.CreateInvoice)
		invoices.POST("/bulk", finance, h.CreateBulkInvoices)
		invoices.PUT("/:id", finance, h.UpdateInvoice)
		invoices.DELETE("/:id", finance, h.DeleteInvoice)
		invoices.POST("/:id/send", finance, h.SendInvoice)
		invoices.PUT("/:id/paid", finance, h.MarkPaid)
	}
}

// actorID pulls the authenticated user id out of the gin context.
func actorID(c *gin.Context) string {
	raw, _ := c.Get("userID")
	id, _ := raw.(string)
	return id
}

// CreateInvoice handles POST /invoices
// @Summary      Create invoice
// @Description  Creates a draft invoice with line items, computing subtotal, VAT and total server-side
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// CreateBulkInvoices handles POST /invoices/bulk
// @Summary      Bulk create invoices from orders
// @Description  Creates one invoice per READY_TO_INVOICE order, counting successes and failures without rolling back the batch
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.BulkInvoiceRequest  true  "Bulk Invoice Payload"
// @Success      200      {object}  response.Response{data=service.BulkInvoiceResult}
// @Failure      400      {object}  response.Response
// @Router       /invoices/bulk [post]
func (h *InvoiceHandler) CreateBulkInvoices(c *gin.Context) {
	var req service.BulkInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.invoiceService.CreateBulkFromOrders(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListInvoices handles GET /invoices
// @Summary      List invoices
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status       query     string  false  "Filter by status (DRAFT, SENT, PAID, OVERDUE)"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Param        credit_notes query     bool    false  "List credit notes instead of invoices"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Number of items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      500          {object}  response.Response
// @Router       /invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.InvoiceFilter{
		Status:      c.Query("status"),
		CustomerID:  c.Query("customer_id"),
		CreditNotes: c.Query("credit_notes") == "true",
		Page:        params.Page,
		Limit:       params.Limit,
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// ExportInvoices handles GET /invoices/export
// @Summary      Export invoices
// @Description  Downloads the filtered invoice list as CSV or JSON
// @Tags         invoices
// @Security     BearerAuth
// @Produce      octet-stream
// @Param        format       query     string  false  "Export format: csv or json (default csv)"
// @Param        status       query     string  false  "Filter by status"
// @Param        customer_id  query     string  false  "Filter by customer"
// @Success      200          {file}    file
// @Failure      400          {object}  response.Response
// @Router       /invoices/export [get]
func (h *InvoiceHandler) ExportInvoices(c *gin.Context) {
	filter := service.InvoiceFilter{
		Status:      c.Query("status"),
		CustomerID:  c.Query("customer_id"),
		CreditNotes: c.Query("credit_notes") == "true",
	}

	filename := "invoices-" + time.Now().Format("20060102")
	switch c.DefaultQuery("format", "csv") {
	case "csv":
		data, err := h.exportService.ExportInvoicesCSV(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	case "json":
		data, err := h.exportService.ExportInvoicesJSON(c.Request.Context(), filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`.json"`)
		c.Data(http.StatusOK, "application/json", data)
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "format must be csv or json"))
	}
}

// GetInvoice handles GET /invoices/:id
// @Summary      Get invoice
// @Description  Retrieves an invoice with its line items
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice handles PUT /invoices/:id
// @Summary      Update invoice
// @Description  Replaces the line items and header fields of a draft invoice
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice handles DELETE /invoices/:id
// @Summary      Delete invoice
// @Description  Deletes an invoice that has no credit notes against it
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), actorID(c), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invoice deleted"))
}

// SendInvoice handles POST /invoices/:id/send
// @Summary      Send invoice
// @Description  Emails the invoice to the customer and moves it DRAFT to SENT
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /invoices/{id}/send [post]
func (h *InvoiceHandler) SendInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.SendInvoice(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// MarkPaid handles PUT /invoices/:id/paid
// @Summary      Mark invoice paid
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /invoices/{id}/paid [put]
func (h *InvoiceHandler) MarkPaid(c *gin.Context) {
	invoice, err := h.invoiceService.MarkPaid(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}
