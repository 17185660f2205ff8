package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type invoiceServiceStub struct {
	invoicedomain.Service

	mu   sync.Mutex
	orgs []snowflake.ID
	err  error
}

func (s *invoiceServiceStub) CheckOverdue(ctx context.Context) ([]invoicedomain.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
		s.orgs = append(s.orgs, orgID)
	}
	return nil, s.err
}

type reminderServiceStub struct {
	reminderdomain.Service

	mu     sync.Mutex
	orgs   []snowflake.ID
	result reminderdomain.RunResult
	err    error
}

func (s *reminderServiceStub) ProcessReminders(ctx context.Context) (reminderdomain.RunResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if orgID, ok := orgcontext.OrgIDFromContext(ctx); ok {
		s.orgs = append(s.orgs, orgID)
	}
	return s.result, s.err
}

type schedulerFixture struct {
	sched       *Scheduler
	db          *gorm.DB
	node        *snowflake.Node
	invoiceSvc  *invoiceServiceStub
	reminderSvc *reminderServiceStub
}

func setupScheduler(t *testing.T, cfg Config) *schedulerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&invoicedomain.Invoice{}, &invoicedomain.InvoiceItem{}))

	node, err := snowflake.NewNode(3)
	require.NoError(t, err)

	invoiceSvc := &invoiceServiceStub{}
	reminderSvc := &reminderServiceStub{}

	sched, err := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		InvoiceSvc:  invoiceSvc,
		ReminderSvc: reminderSvc,
		Clock:       clock.NewFakeClock(time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)),
		Config:      cfg,
	})
	require.NoError(t, err)

	return &schedulerFixture{
		sched:       sched,
		db:          db,
		node:        node,
		invoiceSvc:  invoiceSvc,
		reminderSvc: reminderSvc,
	}
}

func (f *schedulerFixture) seedInvoice(t *testing.T, orgID snowflake.ID, status invoicedomain.InvoiceStatus) {
	t.Helper()
	id := f.node.Generate()
	invoice := invoicedomain.Invoice{
		ID:            id,
		OrgID:         orgID,
		InvoiceNumber: fmt.Sprintf("INV-%d", id.Int64()%1000000),
		CustomerID:    f.node.Generate(),
		CustomerName:  "Acme Corp",
		CustomerEmail: "billing@acme.test",
		IssueDate:     time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status:        status,
		Currency:      "USD",
	}
	require.NoError(t, f.db.Create(&invoice).Error)
}

func TestRunOnceSweepsOrgsWithSentInvoices(t *testing.T) {
	f := setupScheduler(t, Config{})
	orgA := f.node.Generate()
	orgB := f.node.Generate()
	f.seedInvoice(t, orgA, invoicedomain.InvoiceStatusSent)
	f.seedInvoice(t, orgA, invoicedomain.InvoiceStatusSent)
	f.seedInvoice(t, orgB, invoicedomain.InvoiceStatusSent)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	// One sweep per org, not per invoice.
	assert.ElementsMatch(t, []snowflake.ID{orgA, orgB}, f.invoiceSvc.orgs)
	assert.Empty(t, f.reminderSvc.orgs)
}

func TestRunOnceRemindsEligibleOrgs(t *testing.T) {
	f := setupScheduler(t, Config{})
	orgA := f.node.Generate()
	orgB := f.node.Generate()
	orgC := f.node.Generate()
	f.seedInvoice(t, orgA, invoicedomain.InvoiceStatusOverdue)
	f.seedInvoice(t, orgB, invoicedomain.InvoiceStatusReminderSent)
	f.seedInvoice(t, orgC, invoicedomain.InvoiceStatusDraft)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.ElementsMatch(t, []snowflake.ID{orgA, orgB}, f.reminderSvc.orgs)
	assert.Empty(t, f.invoiceSvc.orgs)
}

func TestRunOnceHonorsEnabledJobs(t *testing.T) {
	f := setupScheduler(t, Config{EnabledJobs: []string{"reminders"}})
	orgID := f.node.Generate()
	f.seedInvoice(t, orgID, invoicedomain.InvoiceStatusSent)
	f.seedInvoice(t, orgID, invoicedomain.InvoiceStatusOverdue)

	require.NoError(t, f.sched.RunOnce(context.Background()))

	assert.Empty(t, f.invoiceSvc.orgs)
	assert.ElementsMatch(t, []snowflake.ID{orgID}, f.reminderSvc.orgs)
}

func TestRunOnceContinuesPastOrgFailures(t *testing.T) {
	f := setupScheduler(t, Config{})
	orgA := f.node.Generate()
	orgB := f.node.Generate()
	f.seedInvoice(t, orgA, invoicedomain.InvoiceStatusOverdue)
	f.seedInvoice(t, orgB, invoicedomain.InvoiceStatusOverdue)
	f.reminderSvc.err = errors.New("smtp unavailable")

	err := f.sched.RunOnce(context.Background())
	require.Error(t, err)

	// Both orgs were still attempted.
	assert.Len(t, f.reminderSvc.orgs, 2)
}

func TestRunOnceTreatsTimeoutAsSoftFailure(t *testing.T) {
	f := setupScheduler(t, Config{})
	orgID := f.node.Generate()
	f.seedInvoice(t, orgID, invoicedomain.InvoiceStatusSent)
	f.invoiceSvc.err = context.DeadlineExceeded

	assert.NoError(t, f.sched.RunOnce(context.Background()))
}

func TestNewRejectsMissingDependencies(t *testing.T) {
	_, err := New(Params{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, time.Hour, cfg.RunInterval)
	assert.Equal(t, 50, cfg.BatchSize)
	assert.Equal(t, 5*time.Minute, cfg.JobTimeout)
}
