package handler

import (
	"net/http"

	"crmbackend/internal/middleware"
	"crmbackend/internal/model"
	"crmbackend/internal/service"
	"crmbackend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreditNoteHandler struct {
	creditNoteService service.CreditNoteService
}

func NewCreditNoteHandler(creditNoteService service.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

func (h *CreditNoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	finance := middleware.RequireRole(model.RoleAdmin, model.RoleEkonomi)

	creditNotes := router.Group("/credit-notes", finance)
	{
		creditNotes.POST("", h.CreateCreditNote)
		creditNotes.POST("/:id/send", h.SendCreditNote)
		creditNotes.PUT("/:id/paid", h.MarkPaid)
	}

	// Credit history hangs off the original invoice.
	router.GET("/invoices/:id/credit-notes", finance, h.ListCreditHistory)
}

// CreateCreditNote handles POST /credit-notes
// @Summary      Create credit note
// @Description  Issues a credit note against a sent or paid invoice. FULL negates all lines, PARTIAL negates selected lines, AMOUNT credits a free gross figure.
// @Tags         credit-notes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateCreditNoteRequest  true  "Create Credit Note Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /credit-notes [post]
func (h *CreditNoteHandler) CreateCreditNote(c *gin.Context) {
	var req service.CreateCreditNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	creditNote, err := h.creditNoteService.CreateCreditNote(c.Request.Context(), actorID(c), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, creditNote))
}

// ListCreditHistory handles GET /invoices/:id/credit-notes
// @Summary      List credit notes for an invoice
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Original Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /invoices/{id}/credit-notes [get]
func (h *CreditNoteHandler) ListCreditHistory(c *gin.Context) {
	creditNotes, err := h.creditNoteService.ListCreditHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, creditNotes))
}

// SendCreditNote handles POST /credit-notes/:id/send
// @Summary      Send credit note
// @Description  Emails the credit note using the chosen template variant and marks it SENT
// @Tags         credit-notes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true   "Credit Note ID"
// @Param        payload  body      service.SendCreditNoteRequest  false  "Send Options"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /credit-notes/{id}/send [post]
func (h *CreditNoteHandler) SendCreditNote(c *gin.Context) {
	var req service.SendCreditNoteRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
			return
		}
	}

	creditNote, err := h.creditNoteService.SendCreditNote(c.Request.Context(), actorID(c), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, creditNote))
}

// MarkPaid handles PUT /credit-notes/:id/paid
// @Summary      Mark credit note settled
// @Tags         credit-notes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Credit Note ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400  {object}  response.Response
// @Router       /credit-notes/{id}/paid [put]
func (h *CreditNoteHandler) MarkPaid(c *gin.Context) {
	creditNote, err := h.creditNoteService.MarkPaid(c.Request.Context(), actorID(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, creditNote))
}
