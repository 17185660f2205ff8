package domain

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTransition is returned when a lifecycle operation is attempted
// from a state that does not permit it.
var ErrInvalidTransition = errors.New("invalid_transition")

func transitionErr(from InvoiceStatus, event string) error {
	return fmt.Errorf("%w: cannot %s from %s", ErrInvalidTransition, event, from)
}

// Send transitions DRAFT -> SENT and stamps SentAt.
func (i *Invoice) Send(now time.Time) error {
	if i.Status != InvoiceStatusDraft {
		return transitionErr(i.Status, "send")
	}
	i.Status = InvoiceStatusSent
	i.SentAt = &now
	i.UpdatedAt = now
	return nil
}

// MarkAsPaid transitions any non-terminal state to PAID and stamps PaidAt.
func (i *Invoice) MarkAsPaid(now time.Time) error {
	if i.Status.Terminal() {
		return transitionErr(i.Status, "mark_as_paid")
	}
	i.Status = InvoiceStatusPaid
	i.PaidAt = &now
	i.UpdatedAt = now
	return nil
}

// Cancel transitions any non-terminal state to CANCELLED.
func (i *Invoice) Cancel(now time.Time) error {
	if i.Status.Terminal() {
		return transitionErr(i.Status, "cancel")
	}
	i.Status = InvoiceStatusCancelled
	i.UpdatedAt = now
	return nil
}

// CheckOverdue flips SENT -> OVERDUE when the due date has passed. It never
// re-flips an already overdue or reminded invoice and never applies to
// draft or terminal states. Returns true when the status changed.
func (i *Invoice) CheckOverdue(now time.Time) bool {
	if i.Status != InvoiceStatusSent {
		return false
	}
	if !i.DueDate.Before(now) {
		return false
	}
	i.Status = InvoiceStatusOverdue
	i.UpdatedAt = now
	return true
}

// RecordReminderSent appends a reminder timestamp and moves the invoice to
// REMINDER_SENT. Valid from OVERDUE and, as a self-loop, from REMINDER_SENT.
func (i *Invoice) RecordReminderSent(now time.Time) error {
	if i.Status != InvoiceStatusOverdue && i.Status != InvoiceStatusReminderSent {
		return transitionErr(i.Status, "record_reminder_sent")
	}
	i.ReminderSentAt = append(i.ReminderSentAt, now)
	i.Status = InvoiceStatusReminderSent
	i.UpdatedAt = now
	return nil
}

// Editable reports whether invoice contents may still be changed.
func (i *Invoice) Editable() bool {
	return i.Status == InvoiceStatusDraft
}
