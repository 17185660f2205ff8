package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/faktura/internal/clock"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/internal/providers/email"
	"github.com/smallbiznis/faktura/internal/providers/pdf"
	"github.com/smallbiznis/faktura/internal/reminder/domain"
	"github.com/smallbiznis/faktura/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Repo        domain.Repository
	InvoiceRepo invoicedomain.Repository
	Email       email.Provider
	PDF         pdf.Renderer
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	repo        domain.Repository
	invoiceRepo invoicedomain.Repository
	email       email.Provider
	pdf         pdf.Renderer
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("reminder.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		repo:        p.Repo,
		invoiceRepo: p.InvoiceRepo,
		email:       p.Email,
		pdf:         p.PDF,
	}
}

func (s *Service) GetSettings(ctx context.Context) (domain.ReminderSettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ReminderSettings{}, domain.ErrInvalidOrganization
	}
	settings, err := s.getOrCreate(ctx, orgID)
	if err != nil {
		return domain.ReminderSettings{}, err
	}
	return *settings, nil
}

func (s *Service) UpdateSettings(ctx context.Context, req domain.UpdateSettingsRequest) (domain.ReminderSettings, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.ReminderSettings{}, domain.ErrInvalidOrganization
	}

	settings, err := s.getOrCreate(ctx, orgID)
	if err != nil {
		return domain.ReminderSettings{}, err
	}

	if req.Enabled != nil {
		settings.Enabled = *req.Enabled
	}
	if req.ReminderDays != nil {
		settings.ReminderDays = datatypes.NewJSONSlice(req.ReminderDays)
	}
	if req.Subjects != nil {
		settings.Subjects = datatypes.NewJSONType(req.Subjects)
	}
	if req.Templates != nil {
		settings.Templates = datatypes.NewJSONType(req.Templates)
	}
	if err := settings.Validate(); err != nil {
		return domain.ReminderSettings{}, err
	}
	settings.UpdatedAt = s.clock.Now()

	if err := s.repo.Save(ctx, s.db, settings); err != nil {
		return domain.ReminderSettings{}, err
	}

	s.log.Info("reminder settings updated", zap.String("org_id", orgID.String()))
	return *settings, nil
}

// ProcessReminders considers every reminder-eligible invoice for the org in
// context. Invoices are processed independently: a failure on one is counted
// and logged but never aborts the batch. A reminder is recorded only after
// the notifier confirms the send, so a failed send stays retryable.
func (s *Service) ProcessReminders(ctx context.Context) (domain.RunResult, error) {
	orgID, ok := orgcontext.OrgIDFromContext(ctx)
	if !ok || orgID == 0 {
		return domain.RunResult{}, domain.ErrInvalidOrganization
	}

	settings, err := s.getOrCreate(ctx, orgID)
	if err != nil {
		return domain.RunResult{}, err
	}

	if !settings.Enabled {
		s.log.Info("reminders disabled", zap.String("org_id", orgID.String()))
		return domain.RunResult{Disabled: true}, nil
	}

	// REMINDER_SENT invoices with remaining thresholds are still eligible.
	overdue, err := s.invoiceRepo.List(ctx, s.db, orgID, invoicedomain.ListInvoiceFilter{
		Statuses: []invoicedomain.InvoiceStatus{
			invoicedomain.InvoiceStatusOverdue,
			invoicedomain.InvoiceStatusReminderSent,
		},
	}, pagination.Pagination{})
	if err != nil {
		return domain.RunResult{}, err
	}

	now := s.clock.Now()
	result := domain.RunResult{Processed: len(overdue)}

	for _, invoice := range overdue {
		if invoice == nil {
			continue
		}

		number, due := domain.NextReminderNumber(*settings, *invoice, now)
		if !due {
			result.Skipped++
			continue
		}

		if err := s.sendReminder(ctx, *settings, invoice, number, now); err != nil {
			result.Errors++
			s.log.Error("reminder failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Int("reminder_number", number),
				zap.Error(err),
			)
			continue
		}

		if err := invoice.RecordReminderSent(now); err != nil {
			result.Errors++
			continue
		}
		if err := s.invoiceRepo.Update(ctx, s.db, invoice); err != nil {
			result.Errors++
			s.log.Error("reminder record failed",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err),
			)
			continue
		}

		result.Sent++
		s.log.Info("reminder sent",
			zap.String("invoice_number", invoice.InvoiceNumber),
			zap.Int("reminder_number", number),
		)
	}

	settings.LastRun = &now
	settings.UpdatedAt = now
	if err := s.repo.Save(ctx, s.db, settings); err != nil {
		return result, err
	}

	return result, nil
}

func (s *Service) sendReminder(ctx context.Context, settings domain.ReminderSettings, invoice *invoicedomain.Invoice, number int, now time.Time) error {
	subjectTmpl, messageTmpl := settings.Template(number)
	vars := templateVars(*invoice, number, domain.DaysOverdue(invoice.DueDate, now))

	subject, err := domain.RenderTemplate(subjectTmpl, vars)
	if err != nil {
		return err
	}
	message, err := domain.RenderTemplate(messageTmpl, vars)
	if err != nil {
		return err
	}

	doc, err := s.pdf.RenderInvoice(ctx, *invoice)
	if err != nil {
		return fmt.Errorf("render invoice: %w", err)
	}

	return s.email.Send(ctx, []string{invoice.CustomerEmail}, subject, message, []email.Attachment{{
		Filename:    fmt.Sprintf("Invoice_%s.pdf", invoice.InvoiceNumber),
		ContentType: "application/pdf",
		Content:     doc,
	}})
}

func (s *Service) getOrCreate(ctx context.Context, orgID snowflake.ID) (*domain.ReminderSettings, error) {
	settings, err := s.repo.FindByOrgID(ctx, s.db, orgID)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		return settings, nil
	}

	created := domain.DefaultSettings(s.genID.Generate(), orgID, s.clock.Now())
	if err := s.repo.Save(ctx, s.db, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func templateVars(invoice invoicedomain.Invoice, number, daysOverdue int) map[string]string {
	return map[string]string{
		"invoice_number":  invoice.InvoiceNumber,
		"customer_name":   invoice.CustomerName,
		"issue_date":      invoice.IssueDate.Format("2006-01-02"),
		"due_date":        invoice.DueDate.Format("2006-01-02"),
		"days_overdue":    strconv.Itoa(daysOverdue),
		"currency":        invoice.Currency,
		"total":           invoice.Total.StringFixed(2),
		"reminder_number": strconv.Itoa(number),
	}
}
