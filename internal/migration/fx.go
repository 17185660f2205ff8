package migration

import (
	"context"

	customerdomain "github.com/smallbiznis/faktura/internal/customer/domain"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/reference"
	referencedomain "github.com/smallbiznis/faktura/internal/reference/domain"
	reminderdomain "github.com/smallbiznis/faktura/internal/reminder/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module creates the core tables on startup so the app is usable out of the
// box for local and self-hosted environments, on any supported dialect.
var Module = fx.Module("migrations",
	fx.Invoke(Run),
)

func Run(conn *gorm.DB) error {
	if err := conn.AutoMigrate(
		&customerdomain.Customer{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&reminderdomain.ReminderSettings{},
		&referencedomain.Currency{},
		&referencedomain.Country{},
	); err != nil {
		return err
	}

	return reference.EnsureDefaults(context.Background(), conn)
}
