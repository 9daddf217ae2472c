package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the ISO-8601 calendar date format used for every date key.
// Lexicographic order of keys in this layout is chronological order.
const DateLayout = "2006-01-02"

// Product labels a production batch.
type Product struct {
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	UnitPrice   decimal.Decimal `json:"price"`
	Ingredients []string        `json:"ingredients"`
}

// ProductionBatch is one recorded production event.
type ProductionBatch struct {
	ID         string          `json:"id"`
	Product    Product         `json:"product"`
	QuantityKg decimal.Decimal `json:"quantity_kg"`
	Date       string          `json:"date"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// ValidateDateKey rejects anything that is not a real calendar date in DateLayout.
func ValidateDateKey(field, value string) error {
	if value == "" {
		return NewValidationError(field, "must not be empty")
	}
	parsed, err := time.Parse(DateLayout, value)
	if err != nil || parsed.Format(DateLayout) != value {
		return NewValidationError(field, "must be a date formatted as YYYY-MM-DD")
	}
	return nil
}
