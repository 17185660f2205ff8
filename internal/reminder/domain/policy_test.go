package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"gorm.io/datatypes"
)

var policyNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

func scheduleSettings(days ...int) ReminderSettings {
	return ReminderSettings{
		Enabled:      true,
		ReminderDays: datatypes.NewJSONSlice(days),
	}
}

func overdueInvoice(daysOverdue, remindersSent int) invoicedomain.Invoice {
	status := invoicedomain.InvoiceStatusOverdue
	if remindersSent > 0 {
		status = invoicedomain.InvoiceStatusReminderSent
	}
	history := make([]time.Time, remindersSent)
	for i := range history {
		history[i] = policyNow.AddDate(0, 0, -remindersSent+i)
	}
	return invoicedomain.Invoice{
		Status:         status,
		DueDate:        policyNow.AddDate(0, 0, -daysOverdue),
		ReminderSentAt: datatypes.NewJSONSlice(history),
	}
}

func TestNextReminderNumberSchedule(t *testing.T) {
	settings := scheduleSettings(3, 7, 14)

	cases := []struct {
		name          string
		daysOverdue   int
		remindersSent int
		wantNumber    int
		wantDue       bool
	}{
		{"first reminder due", 5, 0, 1, true},
		{"first already sent, second not yet due", 5, 1, 0, false},
		{"second reminder due", 8, 1, 2, true},
		{"third reminder due", 14, 2, 3, true},
		{"all thresholds consumed", 20, 3, 0, false},
		{"exactly at threshold", 3, 0, 1, true},
		{"one day short of threshold", 2, 0, 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			number, due := NextReminderNumber(settings, overdueInvoice(tc.daysOverdue, tc.remindersSent), policyNow)
			assert.Equal(t, tc.wantDue, due)
			assert.Equal(t, tc.wantNumber, number)
		})
	}
}

func TestNextReminderNumberIdempotentBeforeNextThreshold(t *testing.T) {
	settings := scheduleSettings(3, 7, 14)
	invoice := overdueInvoice(5, 0)

	number, due := NextReminderNumber(settings, invoice, policyNow)
	assert.True(t, due)
	assert.Equal(t, 1, number)

	// Until a send is recorded, asking again yields the same answer,
	// never a second reminder.
	number, due = NextReminderNumber(settings, invoice, policyNow)
	assert.True(t, due)
	assert.Equal(t, 1, number)
}

func TestNextReminderNumberIgnoresOtherStatuses(t *testing.T) {
	settings := scheduleSettings(3)
	for _, status := range []invoicedomain.InvoiceStatus{
		invoicedomain.InvoiceStatusDraft,
		invoicedomain.InvoiceStatusSent,
		invoicedomain.InvoiceStatusPaid,
		invoicedomain.InvoiceStatusCancelled,
	} {
		invoice := invoicedomain.Invoice{
			Status:  status,
			DueDate: policyNow.AddDate(0, 0, -10),
		}
		_, due := NextReminderNumber(settings, invoice, policyNow)
		assert.False(t, due, "reminder for %s", status)
	}
}

func TestNextReminderNumberEmptySchedule(t *testing.T) {
	_, due := NextReminderNumber(scheduleSettings(), overdueInvoice(30, 0), policyNow)
	assert.False(t, due)
}

func TestDaysOverdueTruncates(t *testing.T) {
	due := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, DaysOverdue(due, due))
	assert.Equal(t, 0, DaysOverdue(due, due.Add(-time.Hour)))
	assert.Equal(t, 0, DaysOverdue(due, due.Add(12*time.Hour)))
	assert.Equal(t, 1, DaysOverdue(due, due.Add(24*time.Hour)))
	assert.Equal(t, 2, DaysOverdue(due, due.Add(60*time.Hour)))
}
