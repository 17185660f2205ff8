package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	"github.com/smallbiznis/faktura/pkg/db"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Email        email.Provider
	PDF          pdf.Renderer
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         domain.Repository
	customerRepo customerdomain.Repository
	email        email.Provider
	pdf          pdf.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("invoice.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		email:        p.Email,
		pdf:          p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateInvoiceRequest) (domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.Invoice{}, domain.ErrInvalidOrganization
	}

	customerID, err := snowflake.ParseString(strings.TrimSpace(req.CustomerID))
	if err != nil || customerID == 0 {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}
	customer, err := s.customerRepo.FindByID(ctx, s.db, orgID, customerID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if customer == nil {
		return domain.Invoice{}, domain.ErrInvalidCustomer
	}

	if len(req.Items) == 0 {
		return domain.Invoice{}, domain.ErrNoItems
	}

	now := s.clock.Now()
	issueDate := req.IssueDate
	if issueDate.IsZero() {
		issueDate = now
	}
	dueDate := req.DueDate
	if dueDate.IsZero() {
		dueDate = issueDate.AddDate(0, 0, 30)
	}
	if dueDate.Before(issueDate) {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	id := s.genID.Generate()
	number := strings.TrimSpace(req.InvoiceNumber)
	if number == "" {
		number = invoiceNumber(issueDate, id)
	}

	invoice := domain.Invoice{
		ID:              id,
		OrgID:           orgID,
		InvoiceNumber:   number,
		CustomerID:      customer.ID,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		IssueDate:       issueDate,
		DueDate:         dueDate,
		Status:          domain.InvoiceStatusDraft,
		Currency:        currency,
		DiscountPercent: req.DiscountPercent,
		TaxRate:         req.TaxRate,
		Notes:           req.Notes,
		Items:           buildItems(s.genID, id, req.Items),
		ReminderSentAt:  nil,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	totals, err := domain.CalculateTotals(invoice.Items, invoice.DiscountPercent, invoice.TaxRate)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.ApplyTotals(totals)

	if err := s.repo.Insert(ctx, s.db, &invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateNumber
		}
		return domain.Invoice{}, err
	}

	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("org_id", orgID.String()),
	)
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateInvoiceRequest) (domain.Invoice, error) {
	orgID, invoice, err := s.load(ctx, req.ID)
	if err != nil {
		return domain.Invoice{}, err
	}
	_ = orgID

	if !invoice.Editable() {
		return domain.Invoice{}, domain.ErrNotEditable
	}

	if req.InvoiceNumber != nil {
		number := strings.TrimSpace(*req.InvoiceNumber)
		if number == "" {
			return domain.Invoice{}, domain.ErrInvalidID
		}
		invoice.InvoiceNumber = number
	}
	if req.IssueDate != nil {
		invoice.IssueDate = *req.IssueDate
	}
	if req.DueDate != nil {
		invoice.DueDate = *req.DueDate
	}
	if invoice.DueDate.Before(invoice.IssueDate) {
		return domain.Invoice{}, domain.ErrInvalidDueDate
	}
	if req.Currency != nil {
		invoice.Currency = strings.ToUpper(strings.TrimSpace(*req.Currency))
	}
	if req.DiscountPercent != nil {
		invoice.DiscountPercent = *req.DiscountPercent
	}
	if req.TaxRate != nil {
		invoice.TaxRate = *req.TaxRate
	}
	if req.Notes != nil {
		invoice.Notes = *req.Notes
	}
	if req.Items != nil {
		if len(req.Items) == 0 {
			return domain.Invoice{}, domain.ErrNoItems
		}
		invoice.Items = buildItems(s.genID, invoice.ID, req.Items)
	}

	totals, err := domain.CalculateTotals(invoice.Items, invoice.DiscountPercent, invoice.TaxRate)
	if err != nil {
		return domain.Invoice{}, err
	}
	invoice.ApplyTotals(totals)
	invoice.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Invoice{}, domain.ErrDuplicateNumber
		}
		return domain.Invoice{}, err
	}

	return *invoice, nil
}

func (s *Service) Delete(ctx context.Context, rawID string) error {
	orgID, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return err
	}
	if !invoice.Editable() {
		return domain.ErrNotEditable
	}
	return s.repo.Delete(ctx, s.db, orgID, invoice.ID)
}

func (s *Service) GetByID(ctx context.Context, rawID string) (domain.Invoice, error) {
	_, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ListInvoiceResponse{}, domain.ErrInvalidOrganization
	}

	filter := domain.ListInvoiceFilter{Statuses: req.Statuses}
	if raw := strings.TrimSpace(req.CustomerID); raw != "" {
		customerID, err := snowflake.ParseString(raw)
		if err != nil {
			return domain.ListInvoiceResponse{}, domain.ErrInvalidCustomer
		}
		filter.CustomerID = customerID
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, orgID, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(invoice *domain.Invoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	invoices := make([]domain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	resp := domain.ListInvoiceResponse{Invoices: invoices}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}

	return resp, nil
}

// Send emails the rendered invoice to the customer. The DRAFT -> SENT
// transition is recorded only after the provider confirms the send.
func (s *Service) Send(ctx context.Context, rawID string) (domain.Invoice, error) {
	_, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if invoice.Status != domain.InvoiceStatusDraft {
		return domain.Invoice{}, domain.ErrInvalidTransition
	}

	doc, err := s.pdf.RenderInvoice(ctx, *invoice)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("%w: %v", domain.ErrSendFailed, err)
	}

	subject := fmt.Sprintf("Invoice %s", invoice.InvoiceNumber)
	body := fmt.Sprintf(
		"Dear %s,\n\nPlease find attached invoice %s for %s %s.\n\nDue date: %s.\n\nThank you for your business.\n",
		invoice.CustomerName,
		invoice.InvoiceNumber,
		invoice.Currency,
		invoice.Total.StringFixed(2),
		invoice.DueDate.Format("2006-01-02"),
	)

	err = s.email.Send(ctx, []string{invoice.CustomerEmail}, subject, body, []email.Attachment{{
		Filename:    fmt.Sprintf("Invoice_%s.pdf", invoice.InvoiceNumber),
		ContentType: "application/pdf",
		Content:     doc,
	}})
	if err != nil {
		s.log.Error("invoice send failed",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Error(err),
		)
		return domain.Invoice{}, fmt.Errorf("%w: %v", domain.ErrSendFailed, err)
	}

	if err := invoice.Send(s.clock.Now()); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}

	s.log.Info("invoice sent",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("recipient", invoice.CustomerEmail),
	)
	return *invoice, nil
}

func (s *Service) MarkAsPaid(ctx context.Context, rawID string) (domain.Invoice, error) {
	_, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := invoice.MarkAsPaid(s.clock.Now()); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	s.log.Info("invoice paid", zap.String("invoice_number", invoice.InvoiceNumber))
	return *invoice, nil
}

func (s *Service) Cancel(ctx context.Context, rawID string) (domain.Invoice, error) {
	_, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return domain.Invoice{}, err
	}
	if err := invoice.Cancel(s.clock.Now()); err != nil {
		return domain.Invoice{}, err
	}
	if err := s.repo.Update(ctx, s.db, invoice); err != nil {
		return domain.Invoice{}, err
	}
	return *invoice, nil
}

// CheckOverdue sweeps SENT invoices whose due date has passed and flips them
// to OVERDUE, one save per invoice.
func (s *Service) CheckOverdue(ctx context.Context) ([]domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return nil, domain.ErrInvalidOrganization
	}

	sent, err := s.repo.List(ctx, s.db, orgID, domain.ListInvoiceFilter{
		Statuses: []domain.InvoiceStatus{domain.InvoiceStatusSent},
	}, pagination.Pagination{})
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	var newlyOverdue []domain.Invoice
	for _, invoice := range sent {
		if invoice == nil || !invoice.CheckOverdue(now) {
			continue
		}
		if err := s.repo.Update(ctx, s.db, invoice); err != nil {
			return newlyOverdue, err
		}
		s.log.Info("invoice overdue",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Time("due_date", invoice.DueDate),
		)
		newlyOverdue = append(newlyOverdue, *invoice)
	}

	return newlyOverdue, nil
}

func (s *Service) RenderPDF(ctx context.Context, rawID string) ([]byte, error) {
	_, invoice, err := s.load(ctx, rawID)
	if err != nil {
		return nil, err
	}
	return s.pdf.RenderInvoice(ctx, *invoice)
}

func (s *Service) load(ctx context.Context, rawID string) (snowflake.ID, *domain.Invoice, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return 0, nil, domain.ErrInvalidOrganization
	}

	id, err := snowflake.ParseString(strings.TrimSpace(rawID))
	if err != nil || id == 0 {
		return 0, nil, domain.ErrInvalidID
	}

	invoice, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return 0, nil, err
	}
	if invoice == nil {
		return 0, nil, domain.ErrNotFound
	}
	return orgID, invoice, nil
}

func buildItems(genID *snowflake.Node, invoiceID snowflake.ID, inputs []domain.ItemInput) []domain.InvoiceItem {
	items := make([]domain.InvoiceItem, 0, len(inputs))
	for _, input := range inputs {
		items = append(items, domain.InvoiceItem{
			ID:          genID.Generate(),
			InvoiceID:   invoiceID,
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			Total:       input.Quantity.Mul(input.UnitPrice),
		})
	}
	return items
}

func invoiceNumber(issueDate time.Time, id snowflake.ID) string {
	return fmt.Sprintf("INV-%d-%06d", issueDate.Year(), id.Int64()%1000000)
}
