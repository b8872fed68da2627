package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer/internal/application/service"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/request"
	"github.com/sangkips/invoicer/internal/presentation/http/dto/response"
	"github.com/sangkips/invoicer/pkg/pagination"
	"github.com/sangkips/invoicer/pkg/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// InvoiceHandler handles invoice preview, generation and retrieval
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

func (h *InvoiceHandler) bindInput(c *gin.Context, username string) (*service.InvoiceInput, bool) {
	var req request.InvoiceRequest
	if !bindJSON(c, &req) {
		return nil, false
	}
	input, err := req.ToInput(username)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return input, true
}

// Preview returns the calculated totals without generating a PDF
// @Summary Preview invoice totals
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body request.InvoiceRequest true "Invoice form"
// @Success 200 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Router /invoices/preview [post]
func (h *InvoiceHandler) Preview(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}
	input, ok := h.bindInput(c, username)
	if !ok {
		return
	}

	totals, err := h.invoiceService.Preview(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Invoice calculated successfully", totals)
}

// Generate renders, stores and records an invoice
// @Summary Generate invoice
// @Tags invoices
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for retries"
// @Param request body request.InvoiceRequest true "Invoice form"
// @Success 201 {object} response.APIResponse
// @Failure 422 {object} response.APIResponse
// @Failure 502 {object} response.APIResponse
// @Router /invoices [post]
func (h *InvoiceHandler) Generate(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}
	input, ok := h.bindInput(c, username)
	if !ok {
		return
	}

	out, err := h.invoiceService.Generate(c.Request.Context(), input)
	if err != nil {
		response.Error(c, err)
		return
	}

	warnings := out.Warnings
	if warnings == nil {
		warnings = []service.Warning{}
	}

	response.Created(c, "Invoice generated successfully", gin.H{
		"invoice":  out.Invoice,
		"totals":   out.Totals,
		"warnings": warnings,
	})
}

// List returns the user's invoices in the order they were generated
// @Summary List invoices
// @Tags invoices
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number"
// @Param per_page query int false "Items per page"
// @Success 200 {object} response.APIResponse
// @Router /invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()

	result, err := h.invoiceService.ListInvoices(c.Request.Context(), username, params)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithPagination(c, http.StatusOK, "Invoices retrieved successfully", result)
}

// Export returns the invoice register as an XLSX download
func (h *InvoiceHandler) Export(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	data, err := h.invoiceService.ExportRegister(c.Request.Context(), username)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := utils.SafeFileComponent(username) + "_invoices.xlsx"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// Download streams the newest PDF stored under the invoice number
func (h *InvoiceHandler) Download(c *gin.Context) {
	username, ok := requireUser(c)
	if !ok {
		return
	}

	rc, invoice, err := h.invoiceService.Download(c.Request.Context(), username, c.Param("number"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	filename := utils.InvoiceFileName(username, invoice.InvoiceNo)
	c.DataFromReader(http.StatusOK, -1, "application/pdf", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
}
