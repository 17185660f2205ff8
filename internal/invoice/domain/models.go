// Package domain contains the invoice model, its lifecycle state machine
// and the financial total calculations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states.
type InvoiceStatus string

const (
	InvoiceStatusDraft        InvoiceStatus = "DRAFT"
	InvoiceStatusSent         InvoiceStatus = "SENT"
	InvoiceStatusOverdue      InvoiceStatus = "OVERDUE"
	InvoiceStatusReminderSent InvoiceStatus = "REMINDER_SENT"
	InvoiceStatusPaid         InvoiceStatus = "PAID"
	InvoiceStatusCancelled    InvoiceStatus = "CANCELLED"
)

// Terminal reports whether no further transition is permitted from the status.
func (s InvoiceStatus) Terminal() bool {
	return s == InvoiceStatusPaid || s == InvoiceStatusCancelled
}

// Valid reports whether the status is one of the known lifecycle states.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusOverdue,
		InvoiceStatusReminderSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// Invoice represents a customer invoice. Status, reminder history and
// monetary totals are only ever mutated through the transition methods in
// state.go and the calculator in totals.go.
type Invoice struct {
	ID            snowflake.ID  `gorm:"primaryKey" json:"id"`
	OrgID         snowflake.ID  `gorm:"not null;index" json:"organization_id"`
	InvoiceNumber string        `gorm:"not null;uniqueIndex:ux_invoice_number" json:"invoice_number"`
	CustomerID    snowflake.ID  `gorm:"not null;index" json:"customer_id"`
	CustomerName  string        `gorm:"type:text" json:"customer_name"`
	CustomerEmail string        `gorm:"type:text" json:"customer_email"`
	IssueDate     time.Time     `gorm:"not null" json:"issue_date"`
	DueDate       time.Time     `gorm:"not null;index" json:"due_date"`
	Status        InvoiceStatus `gorm:"type:text;not null;default:'DRAFT';index" json:"status"`
	Currency      string        `gorm:"type:text;not null;default:'USD'" json:"currency"`

	Subtotal        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	DiscountPercent decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"discount_percent"`
	DiscountAmount  decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount_amount"`
	TaxRate         decimal.Decimal `gorm:"type:numeric(5,2);not null;default:0" json:"tax_rate"`
	TaxAmount       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"tax_amount"`
	Total           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"items"`

	Notes          string                          `gorm:"type:text" json:"notes,omitempty"`
	SentAt         *time.Time                      `gorm:"" json:"sent_at,omitempty"`
	PaidAt         *time.Time                      `gorm:"" json:"paid_at,omitempty"`
	ReminderSentAt datatypes.JSONSlice[time.Time]  `gorm:"not null;default:'[]'" json:"reminder_sent_at"`
	CreatedAt      time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt      time.Time                       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// RemindersSent returns how many reminders were already sent for the invoice.
func (i *Invoice) RemindersSent() int { return len(i.ReminderSentAt) }

// InvoiceItem represents a line on an invoice. Its total is always derived
// from quantity and unit price, never trusted from input.
type InvoiceItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"unit_price"`
	Total       decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
}

// TableName sets the database table name.
func (InvoiceItem) TableName() string { return "invoice_items" }
