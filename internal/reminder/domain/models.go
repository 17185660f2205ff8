// Package domain contains reminder settings and the policy that decides
// which payment reminder, if any, an overdue invoice should receive next.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// ReminderSettings configures automated payment reminders for one owner.
// ReminderDays holds day-offsets past the due date, strictly ascending, one
// reminder per threshold. Subjects and Templates are keyed by the 1-based
// reminder sequence number.
type ReminderSettings struct {
	ID           snowflake.ID                        `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID                        `gorm:"not null;uniqueIndex" json:"organization_id"`
	Enabled      bool                                `gorm:"not null;default:true" json:"enabled"`
	ReminderDays datatypes.JSONSlice[int]            `gorm:"not null;default:'[]'" json:"reminder_days"`
	Subjects     datatypes.JSONType[map[int]string]  `json:"subjects"`
	Templates    datatypes.JSONType[map[int]string]  `json:"templates"`
	LastRun      *time.Time                          `gorm:"" json:"last_run,omitempty"`
	CreatedAt    time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time                           `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (ReminderSettings) TableName() string { return "reminder_settings" }

// DefaultSettings returns the built-in reminder schedule for a new owner.
func DefaultSettings(id, orgID snowflake.ID, now time.Time) ReminderSettings {
	return ReminderSettings{
		ID:           id,
		OrgID:        orgID,
		Enabled:      true,
		ReminderDays: datatypes.NewJSONSlice([]int{3, 7, 14}),
		Subjects:     datatypes.NewJSONType(defaultSubjects()),
		Templates:    datatypes.NewJSONType(defaultTemplates()),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Validate checks the schedule invariants: when enabled, the day list must
// be non-empty and strictly ascending.
func (s ReminderSettings) Validate() error {
	days := []int(s.ReminderDays)
	if s.Enabled && len(days) == 0 {
		return ErrInvalidReminderDays
	}
	for idx, day := range days {
		if day <= 0 {
			return ErrInvalidReminderDays
		}
		if idx > 0 && day <= days[idx-1] {
			return ErrInvalidReminderDays
		}
	}
	return nil
}
