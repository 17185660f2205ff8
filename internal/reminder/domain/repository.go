package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	FindByOrgID(ctx context.Context, db *gorm.DB, orgID snowflake.ID) (*ReminderSettings, error)
	Save(ctx context.Context, db *gorm.DB, settings *ReminderSettings) error
	// ListOrgIDs returns every org that has reminder settings stored.
	ListOrgIDs(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error)
}
