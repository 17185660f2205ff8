package domain

import (
	"context"
	"errors"
)

// RunResult aggregates the outcome of one reminder batch run.
type RunResult struct {
	Processed int  `json:"processed"`
	Sent      int  `json:"sent"`
	Skipped   int  `json:"skipped"`
	Errors    int  `json:"errors"`
	Disabled  bool `json:"disabled"`
}

// UpdateSettingsRequest enumerates the user-mutable settings fields.
// Nil means "leave unchanged".
type UpdateSettingsRequest struct {
	Enabled      *bool
	ReminderDays []int
	Subjects     map[int]string
	Templates    map[int]string
}

type Service interface {
	// GetSettings returns the owner's settings, creating defaults on first use.
	GetSettings(ctx context.Context) (ReminderSettings, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (ReminderSettings, error)

	// ProcessReminders runs the reminder batch for the org in context:
	// every overdue invoice is considered independently, reminders are sent
	// through the notifier, and successful sends are recorded on the
	// invoice. The settings' last run timestamp is persisted even when no
	// invoice was touched.
	ProcessReminders(ctx context.Context) (RunResult, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidReminderDays = errors.New("invalid_reminder_days")
	ErrUnknownPlaceholder  = errors.New("unknown_placeholder")
)
