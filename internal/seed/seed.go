package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/faktura/internal/clock"
	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	"gorm.io/gorm"
)

const (
	demoCustomerName  = "Demo Customer"
	demoCustomerEmail = "demo@example.com"
)

// EnsureDemoData seeds a sample customer, a draft invoice and default
// reminder settings for the org. Safe to run on every startup: existing
// rows are left alone.
func EnsureDemoData(db *gorm.DB, node *snowflake.Node, clk clock.Clock, orgID snowflake.ID) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}
	if orgID == 0 {
		return errors.New("seed org id is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := ensureDemoCustomerTx(ctx, tx, node, clk, orgID)
		if err != nil {
			return err
		}
		if err := ensureDemoInvoiceTx(ctx, tx, node, clk, orgID, customer); err != nil {
			return err
		}
		return ensureReminderSettingsTx(ctx, tx, node, clk, orgID)
	})
}

func ensureDemoCustomerTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, orgID snowflake.ID) (customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := tx.WithContext(ctx).
		Where("org_id = ? AND email = ?", orgID, demoCustomerEmail).
		First(&customer).Error
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return customer, err
	}

	now := clk.Now()
	customer = customerdomain.Customer{
		ID:        node.Generate(),
		OrgID:     orgID,
		Name:      demoCustomerName,
		Email:     demoCustomerEmail,
		Company:   "Demo Co",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := tx.WithContext(ctx).Create(&customer).Error; err != nil {
		return customer, err
	}
	return customer, nil
}

func ensureDemoInvoiceTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, orgID snowflake.ID, customer customerdomain.Customer) error {
	var count int64
	err := tx.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("org_id = ?", orgID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := clk.Now()
	id := node.Generate()
	invoice := invoicedomain.Invoice{
		ID:            id,
		OrgID:         orgID,
		InvoiceNumber: "INV-DEMO-000001",
		CustomerID:    customer.ID,
		CustomerName:  customer.Name,
		CustomerEmail: customer.Email,
		IssueDate:     now,
		DueDate:       now.AddDate(0, 0, 30),
		Status:        invoicedomain.InvoiceStatusDraft,
		Currency:      "USD",
		Items: []invoicedomain.InvoiceItem{{
			ID:          node.Generate(),
			InvoiceID:   id,
			Description: "Consulting services",
			Quantity:    decimal.NewFromInt(10),
			UnitPrice:   decimal.RequireFromString("125.00"),
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	totals, err := invoicedomain.CalculateTotals(invoice.Items, invoice.DiscountPercent, invoice.TaxRate)
	if err != nil {
		return err
	}
	invoice.ApplyTotals(totals)

	return tx.WithContext(ctx).Create(&invoice).Error
}

func ensureReminderSettingsTx(ctx context.Context, tx *gorm.DB, node *snowflake.Node, clk clock.Clock, orgID snowflake.ID) error {
	var settings reminderdomain.ReminderSettings
	err := tx.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&settings).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	created := reminderdomain.DefaultSettings(node.Generate(), orgID, clk.Now())
	return tx.WithContext(ctx).Create(&created).Error
}
