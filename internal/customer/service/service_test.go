package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/customer/domain"
	"github.com/smallbiznis/faktura/internal/customer/repository"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type customerFixture struct {
	svc   domain.Service
	db    *gorm.DB
	node  *snowflake.Node
	orgID snowflake.ID
	ctx   context.Context
}

func setupCustomerService(t *testing.T) *customerFixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&domain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
	))

	node, err := snowflake.NewNode(4)
	require.NoError(t, err)
	orgID := node.Generate()

	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})

	return &customerFixture{
		svc:   svc,
		db:    db,
		node:  node,
		orgID: orgID,
		ctx:   orgcontext.WithOrgID(context.Background(), int64(orgID)),
	}
}

func TestCreateCustomer(t *testing.T) {
	f := setupCustomerService(t)

	customer, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:    "  Acme Corp  ",
		Email:   "billing@acme.test",
		Company: "Acme",
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", customer.Name)
	assert.Equal(t, f.orgID, customer.OrgID)
	assert.NotZero(t, customer.ID)
}

func TestCreateCustomerValidation(t *testing.T) {
	f := setupCustomerService(t)

	tests := []struct {
		name    string
		req     domain.CreateCustomerRequest
		wantErr error
	}{
		{"empty name", domain.CreateCustomerRequest{Email: "a@b.test"}, domain.ErrInvalidName},
		{"empty email", domain.CreateCustomerRequest{Name: "Acme"}, domain.ErrInvalidEmail},
		{"malformed email", domain.CreateCustomerRequest{Name: "Acme", Email: "not-an-email"}, domain.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Create(f.ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCreateCustomerRequiresOrg(t *testing.T) {
	f := setupCustomerService(t)

	_, err := f.svc.Create(context.Background(), domain.CreateCustomerRequest{
		Name:  "Acme",
		Email: "a@b.test",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidOrganization)
}

func TestUpdateCustomerPartial(t *testing.T) {
	f := setupCustomerService(t)
	customer, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
		City:  "Berlin",
	})
	require.NoError(t, err)

	phone := "+49 30 1234"
	updated, err := f.svc.Update(f.ctx, domain.UpdateCustomerRequest{
		ID:    customer.ID.String(),
		Phone: &phone,
	})
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "Acme Corp", updated.Name)
	assert.Equal(t, "Berlin", updated.City)
}

func TestUpdateCustomerRejectsBadEmail(t *testing.T) {
	f := setupCustomerService(t)
	customer, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	require.NoError(t, err)

	bad := "nope"
	_, err = f.svc.Update(f.ctx, domain.UpdateCustomerRequest{
		ID:    customer.ID.String(),
		Email: &bad,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidEmail)
}

func TestDeleteCustomer(t *testing.T) {
	f := setupCustomerService(t)
	customer, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(f.ctx, customer.ID.String()))

	_, err = f.svc.GetByID(f.ctx, domain.GetCustomerRequest{ID: customer.ID.String()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCustomerRefusedWithInvoices(t *testing.T) {
	f := setupCustomerService(t)
	customer, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	require.NoError(t, err)

	invoice := invoicedomain.Invoice{
		ID:            f.node.Generate(),
		OrgID:         f.orgID,
		InvoiceNumber: "INV-1",
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		IssueDate:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		Status:        invoicedomain.InvoiceStatusDraft,
		Currency:      "USD",
	}
	require.NoError(t, f.db.Create(&invoice).Error)

	err = f.svc.Delete(f.ctx, customer.ID.String())
	assert.ErrorIs(t, err, domain.ErrHasInvoices)

	// The customer is untouched.
	_, err = f.svc.GetByID(f.ctx, domain.GetCustomerRequest{ID: customer.ID.String()})
	assert.NoError(t, err)
}

func TestListCustomersFiltersByName(t *testing.T) {
	f := setupCustomerService(t)
	for _, name := range []string{"Acme Corp", "Beta LLC", "Acme Labs"} {
		_, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
			Name:  name,
			Email: "billing@acme.test",
		})
		require.NoError(t, err)
	}

	resp, err := f.svc.List(f.ctx, domain.ListCustomerRequest{Name: "Acme Corp"})
	require.NoError(t, err)
	require.Len(t, resp.Customers, 1)
	assert.Equal(t, "Acme Corp", resp.Customers[0].Name)
}

func TestListCustomersScopedToOrg(t *testing.T) {
	f := setupCustomerService(t)
	_, err := f.svc.Create(f.ctx, domain.CreateCustomerRequest{
		Name:  "Acme Corp",
		Email: "billing@acme.test",
	})
	require.NoError(t, err)

	otherCtx := orgcontext.WithOrgID(context.Background(), int64(f.node.Generate()))
	resp, err := f.svc.List(otherCtx, domain.ListCustomerRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Customers)
}

func TestGetCustomerInvalidID(t *testing.T) {
	f := setupCustomerService(t)

	_, err := f.svc.GetByID(f.ctx, domain.GetCustomerRequest{ID: "not-a-snowflake"})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}
