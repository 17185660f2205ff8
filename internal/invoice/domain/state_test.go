package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func draftInvoice() Invoice {
	return Invoice{
		Status:    InvoiceStatusDraft,
		IssueDate: testNow.AddDate(0, 0, -10),
		DueDate:   testNow.AddDate(0, 0, 20),
	}
}

func TestSendFromDraft(t *testing.T) {
	invoice := draftInvoice()
	require.NoError(t, invoice.Send(testNow))
	assert.Equal(t, InvoiceStatusSent, invoice.Status)
	require.NotNil(t, invoice.SentAt)
	assert.Equal(t, testNow, *invoice.SentAt)
}

func TestSendOnlyFromDraft(t *testing.T) {
	for _, status := range []InvoiceStatus{
		InvoiceStatusSent,
		InvoiceStatusOverdue,
		InvoiceStatusReminderSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	} {
		invoice := Invoice{Status: status}
		err := invoice.Send(testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition, "send from %s", status)
		assert.Equal(t, status, invoice.Status)
	}
}

func TestMarkAsPaidFromAnyNonTerminal(t *testing.T) {
	for _, status := range []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusOverdue,
		InvoiceStatusReminderSent,
	} {
		invoice := Invoice{Status: status}
		require.NoError(t, invoice.MarkAsPaid(testNow), "pay from %s", status)
		assert.Equal(t, InvoiceStatusPaid, invoice.Status)
		require.NotNil(t, invoice.PaidAt)
	}
}

func TestMarkAsPaidRejectedFromTerminal(t *testing.T) {
	for _, status := range []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusCancelled} {
		invoice := Invoice{Status: status}
		assert.ErrorIs(t, invoice.MarkAsPaid(testNow), ErrInvalidTransition)
	}
}

func TestCancelFromAnyNonTerminal(t *testing.T) {
	for _, status := range []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusOverdue,
		InvoiceStatusReminderSent,
	} {
		invoice := Invoice{Status: status}
		require.NoError(t, invoice.Cancel(testNow), "cancel from %s", status)
		assert.Equal(t, InvoiceStatusCancelled, invoice.Status)
	}
}

func TestCancelRejectedFromTerminal(t *testing.T) {
	for _, status := range []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusCancelled} {
		invoice := Invoice{Status: status}
		assert.ErrorIs(t, invoice.Cancel(testNow), ErrInvalidTransition)
	}
}

func TestCheckOverdueFlipsSentPastDue(t *testing.T) {
	invoice := Invoice{Status: InvoiceStatusSent, DueDate: testNow.AddDate(0, 0, -1)}
	assert.True(t, invoice.CheckOverdue(testNow))
	assert.Equal(t, InvoiceStatusOverdue, invoice.Status)

	// A second sweep over the same invoice is a no-op.
	assert.False(t, invoice.CheckOverdue(testNow))
	assert.Equal(t, InvoiceStatusOverdue, invoice.Status)
}

func TestCheckOverdueIgnoresFutureDueDate(t *testing.T) {
	invoice := Invoice{Status: InvoiceStatusSent, DueDate: testNow.AddDate(0, 0, 5)}
	assert.False(t, invoice.CheckOverdue(testNow))
	assert.Equal(t, InvoiceStatusSent, invoice.Status)
}

func TestCheckOverdueIgnoresOtherStates(t *testing.T) {
	for _, status := range []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusOverdue,
		InvoiceStatusReminderSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	} {
		invoice := Invoice{Status: status, DueDate: testNow.AddDate(0, 0, -30)}
		assert.False(t, invoice.CheckOverdue(testNow), "sweep from %s", status)
		assert.Equal(t, status, invoice.Status)
	}
}

func TestRecordReminderSent(t *testing.T) {
	invoice := Invoice{Status: InvoiceStatusOverdue}
	require.NoError(t, invoice.RecordReminderSent(testNow))
	assert.Equal(t, InvoiceStatusReminderSent, invoice.Status)
	assert.Equal(t, 1, invoice.RemindersSent())

	// Self-loop: further reminders append to the history.
	later := testNow.AddDate(0, 0, 4)
	require.NoError(t, invoice.RecordReminderSent(later))
	assert.Equal(t, InvoiceStatusReminderSent, invoice.Status)
	assert.Equal(t, 2, invoice.RemindersSent())
}

func TestRecordReminderSentRejectedElsewhere(t *testing.T) {
	for _, status := range []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusCancelled,
	} {
		invoice := Invoice{Status: status}
		err := invoice.RecordReminderSent(testNow)
		assert.ErrorIs(t, err, ErrInvalidTransition, "reminder from %s", status)
		assert.Equal(t, 0, invoice.RemindersSent())
	}
}

func TestEditableOnlyWhileDraft(t *testing.T) {
	invoice := draftInvoice()
	assert.True(t, invoice.Editable())

	require.NoError(t, invoice.Send(testNow))
	assert.False(t, invoice.Editable())
}
