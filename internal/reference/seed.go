package reference

import (
	"context"
	"errors"

	"github.com/smallbiznis/faktura/internal/reference/domain"
	"gorm.io/gorm"
)

func symbol(s string) *string { return &s }

var defaultCurrencies = []domain.Currency{
	{Code: "USD", Name: "US Dollar", Symbol: symbol("$"), MinorUnit: 2, IsActive: true},
	{Code: "EUR", Name: "Euro", Symbol: symbol("€"), MinorUnit: 2, IsActive: true},
	{Code: "GBP", Name: "Pound Sterling", Symbol: symbol("£"), MinorUnit: 2, IsActive: true},
	{Code: "IDR", Name: "Indonesian Rupiah", Symbol: symbol("Rp"), MinorUnit: 0, IsActive: true},
	{Code: "JPY", Name: "Yen", Symbol: symbol("¥"), MinorUnit: 0, IsActive: true},
	{Code: "AUD", Name: "Australian Dollar", Symbol: symbol("A$"), MinorUnit: 2, IsActive: true},
	{Code: "CAD", Name: "Canadian Dollar", Symbol: symbol("C$"), MinorUnit: 2, IsActive: true},
	{Code: "SGD", Name: "Singapore Dollar", Symbol: symbol("S$"), MinorUnit: 2, IsActive: true},
	{Code: "CHF", Name: "Swiss Franc", MinorUnit: 2, IsActive: true},
	{Code: "INR", Name: "Indian Rupee", Symbol: symbol("₹"), MinorUnit: 2, IsActive: true},
}

var defaultCountries = []domain.Country{
	{Code: "US", Name: "United States"},
	{Code: "GB", Name: "United Kingdom"},
	{Code: "DE", Name: "Germany"},
	{Code: "FR", Name: "France"},
	{Code: "NL", Name: "Netherlands"},
	{Code: "ID", Name: "Indonesia"},
	{Code: "SG", Name: "Singapore"},
	{Code: "JP", Name: "Japan"},
	{Code: "AU", Name: "Australia"},
	{Code: "CA", Name: "Canada"},
	{Code: "CH", Name: "Switzerland"},
	{Code: "IN", Name: "India"},
}

// EnsureDefaults fills the lookup tables on first start. Rows added by an
// operator are never touched.
func EnsureDefaults(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("reference database handle is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Currency{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&defaultCurrencies).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&domain.Country{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			if err := tx.Create(&defaultCountries).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
