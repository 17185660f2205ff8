package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
)

type ItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type CreateInvoiceRequest struct {
	CustomerID      string
	InvoiceNumber   string // assigned when empty
	IssueDate       time.Time
	DueDate         time.Time
	Currency        string
	DiscountPercent decimal.Decimal
	TaxRate         decimal.Decimal
	Notes           string
	Items           []ItemInput
}

// UpdateInvoiceRequest enumerates the user-mutable invoice fields. Status
// and totals are deliberately absent: they change only through the state
// machine and the totals calculator. Nil means "leave unchanged".
type UpdateInvoiceRequest struct {
	ID              string
	InvoiceNumber   *string
	IssueDate       *time.Time
	DueDate         *time.Time
	Currency        *string
	DiscountPercent *decimal.Decimal
	TaxRate         *decimal.Decimal
	Notes           *string
	Items           []ItemInput // non-nil replaces all items
}

type ListInvoiceRequest struct {
	PageToken  string
	PageSize   int32
	Statuses   []InvoiceStatus
	CustomerID string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(context.Context, CreateInvoiceRequest) (Invoice, error)
	Update(context.Context, UpdateInvoiceRequest) (Invoice, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)

	// Send renders the invoice to PDF, emails it to the customer and moves
	// the invoice to SENT. The transition is only recorded after a
	// confirmed send.
	Send(ctx context.Context, id string) (Invoice, error)
	MarkAsPaid(ctx context.Context, id string) (Invoice, error)
	Cancel(ctx context.Context, id string) (Invoice, error)

	// CheckOverdue sweeps SENT invoices past their due date for the org in
	// context and returns the newly overdue ones.
	CheckOverdue(ctx context.Context) ([]Invoice, error)

	// RenderPDF returns the invoice document bytes.
	RenderPDF(ctx context.Context, id string) ([]byte, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidCustomer     = errors.New("invalid_customer")
	ErrInvalidDueDate      = errors.New("invalid_due_date")
	ErrNoItems             = errors.New("invalid_items")
	ErrNotFound            = errors.New("not_found")
	ErrNotEditable         = errors.New("invoice_not_editable")
	ErrDuplicateNumber     = errors.New("duplicate_invoice_number")
	ErrSendFailed          = errors.New("send_failed")
)
