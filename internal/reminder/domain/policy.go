package domain

import (
	"time"

	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
)

// NextReminderNumber decides which reminder, if any, the invoice should
// receive now. Thresholds are consumed in ascending order, one reminder per
// threshold, never skipping or repeating. The returned number is the 1-based
// reminder sequence number; ok is false when no reminder is due.
//
// The decision depends only on the invoice's own reminder history, so
// calling it again before the next threshold is crossed yields no reminder:
// the count only increases after a send is actually recorded.
func NextReminderNumber(settings ReminderSettings, invoice invoicedomain.Invoice, now time.Time) (int, bool) {
	if invoice.Status != invoicedomain.InvoiceStatusOverdue &&
		invoice.Status != invoicedomain.InvoiceStatusReminderSent {
		return 0, false
	}

	daysOverdue := DaysOverdue(invoice.DueDate, now)
	remindersSent := invoice.RemindersSent()

	days := []int(settings.ReminderDays)
	if remindersSent >= len(days) {
		return 0, false
	}

	if daysOverdue < days[remindersSent] {
		return 0, false
	}

	return remindersSent + 1, true
}

// DaysOverdue returns the whole days elapsed since the due date, truncated.
func DaysOverdue(dueDate, now time.Time) int {
	if !dueDate.Before(now) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}
