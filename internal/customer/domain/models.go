package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Customer represents a business client that receives invoices.
type Customer struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID      snowflake.ID `gorm:"not null;index" json:"organization_id"`
	Name       string       `gorm:"not null" json:"name"`
	Email      string       `gorm:"not null" json:"email"`
	Company    string       `gorm:"type:text" json:"company,omitempty"`
	Phone      string       `gorm:"type:text" json:"phone,omitempty"`
	Address    string       `gorm:"type:text" json:"address,omitempty"`
	City       string       `gorm:"type:text" json:"city,omitempty"`
	State      string       `gorm:"type:text" json:"state,omitempty"`
	PostalCode string       `gorm:"type:text" json:"postal_code,omitempty"`
	Country    string       `gorm:"type:text" json:"country,omitempty"`
	Notes      string       `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }
