package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type invoiceItemRequest struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	CustomerID      string               `json:"customer_id"`
	InvoiceNumber   string               `json:"invoice_number"`
	IssueDate       string               `json:"issue_date"`
	DueDate         string               `json:"due_date"`
	Currency        string               `json:"currency"`
	DiscountPercent decimal.Decimal      `json:"discount_percent"`
	TaxRate         decimal.Decimal      `json:"tax_rate"`
	Notes           string               `json:"notes"`
	Items           []invoiceItemRequest `json:"items"`
}

type updateInvoiceRequest struct {
	InvoiceNumber   *string              `json:"invoice_number"`
	IssueDate       *string              `json:"issue_date"`
	DueDate         *string              `json:"due_date"`
	Currency        *string              `json:"currency"`
	DiscountPercent *decimal.Decimal     `json:"discount_percent"`
	TaxRate         *decimal.Decimal     `json:"tax_rate"`
	Notes           *string              `json:"notes"`
	Items           []invoiceItemRequest `json:"items"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	issueDate, err := parseOptionalDate(req.IssueDate)
	if err != nil {
		AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
		return
	}
	dueDate, err := parseOptionalDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	createReq := invoicedomain.CreateInvoiceRequest{
		CustomerID:      strings.TrimSpace(req.CustomerID),
		InvoiceNumber:   strings.TrimSpace(req.InvoiceNumber),
		Currency:        strings.TrimSpace(req.Currency),
		DiscountPercent: req.DiscountPercent,
		TaxRate:         req.TaxRate,
		Notes:           req.Notes,
		Items:           toItemInputs(req.Items),
	}
	if issueDate != nil {
		createReq.IssueDate = *issueDate
	}
	if dueDate != nil {
		createReq.DueDate = *dueDate
	}

	resp, err := s.invoiceSvc.Create(c.Request.Context(), createReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateInvoice(c *gin.Context) {
	var req updateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	updateReq := invoicedomain.UpdateInvoiceRequest{
		ID:              strings.TrimSpace(c.Param("id")),
		InvoiceNumber:   req.InvoiceNumber,
		Currency:        req.Currency,
		DiscountPercent: req.DiscountPercent,
		TaxRate:         req.TaxRate,
		Notes:           req.Notes,
	}
	if req.IssueDate != nil {
		issueDate, err := parseOptionalDate(*req.IssueDate)
		if err != nil || issueDate == nil {
			AbortWithError(c, newValidationError("issue_date", "invalid_issue_date", "invalid issue_date"))
			return
		}
		updateReq.IssueDate = issueDate
	}
	if req.DueDate != nil {
		dueDate, err := parseOptionalDate(*req.DueDate)
		if err != nil || dueDate == nil {
			AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
			return
		}
		updateReq.DueDate = dueDate
	}
	if req.Items != nil {
		updateReq.Items = toItemInputs(req.Items)
	}

	resp, err := s.invoiceSvc.Update(c.Request.Context(), updateReq)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	if err := s.invoiceSvc.Delete(c.Request.Context(), strings.TrimSpace(c.Param("id"))); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) ListInvoices(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status     string `form:"status"`
		CustomerID string `form:"customer_id"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var statuses []invoicedomain.InvoiceStatus
	for _, raw := range strings.Split(query.Status, ",") {
		raw = strings.ToUpper(strings.TrimSpace(raw))
		if raw == "" {
			continue
		}
		status := invoicedomain.InvoiceStatus(raw)
		if !status.Valid() {
			AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
			return
		}
		statuses = append(statuses, status)
	}

	resp, err := s.invoiceSvc.List(c.Request.Context(), invoicedomain.ListInvoiceRequest{
		PageToken:  query.PageToken,
		PageSize:   int32(query.PageSize),
		Statuses:   statuses,
		CustomerID: strings.TrimSpace(query.CustomerID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Invoices, "page_info": resp.PageInfo})
}

func (s *Server) GetInvoiceByID(c *gin.Context) {
	resp, err := s.invoiceSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) SendInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Send(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) MarkInvoicePaid(c *gin.Context) {
	resp, err := s.invoiceSvc.MarkAsPaid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelInvoice(c *gin.Context) {
	resp, err := s.invoiceSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RenderInvoicePDF(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	doc, err := s.invoiceSvc.RenderPDF(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=invoice-%s.pdf", id))
	c.Data(http.StatusOK, "application/pdf", doc)
}

func (s *Server) CheckOverdueInvoices(c *gin.Context) {
	overdue, err := s.invoiceSvc.CheckOverdue(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": overdue, "count": len(overdue)})
}

func toItemInputs(items []invoiceItemRequest) []invoicedomain.ItemInput {
	inputs := make([]invoicedomain.ItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, invoicedomain.ItemInput{
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return inputs
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidOrganization,
		invoicedomain.ErrInvalidID,
		invoicedomain.ErrInvalidCustomer,
		invoicedomain.ErrInvalidDueDate,
		invoicedomain.ErrNoItems,
		invoicedomain.ErrInvalidQuantity,
		invoicedomain.ErrInvalidUnitPrice,
		invoicedomain.ErrInvalidDiscount,
		invoicedomain.ErrInvalidTaxRate:
		return true
	default:
		return false
	}
}
