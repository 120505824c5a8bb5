package domain

import "time"

// ShelfLifeUnit selects the arithmetic rule that converts a shelf-life
// value into a duration from the opened date.
type ShelfLifeUnit string

const (
	// UnitDays counts fixed 24h days.
	UnitDays ShelfLifeUnit = "days"
	// UnitMonths30 approximates a month as 30 fixed days.
	UnitMonths30 ShelfLifeUnit = "months30"
	// UnitMonthsCalendar advances true calendar months, clamping to the
	// last day of a shorter target month.
	UnitMonthsCalendar ShelfLifeUnit = "monthsCalendar"
)

// KnownUnit reports whether u is one of the three shelf-life rules.
func KnownUnit(u ShelfLifeUnit) bool {
	switch u {
	case UnitDays, UnitMonths30, UnitMonthsCalendar:
		return true
	}
	return false
}

// Category is the closed set of record categories.
type Category string

const (
	CategoryMedicamentos Category = "Medicamentos"
	CategoryAlimentos    Category = "Alimentos"
	CategoryOutros       Category = "Outros"
)

// DosePlan holds optional intake-plan fields for medicine records. Purely
// informational, no computational effect.
type DosePlan struct {
	Enabled  bool   `json:"enabled"`
	Dose     string `json:"dose"`
	Freq     string `json:"freq"`
	Duration string `json:"duration"`
}

// ProductRecord is the sole persisted entity: one opened perishable item.
// Expiry date and days-remaining are derived by the engine on every read
// and never stored.
type ProductRecord struct {
	ID             string        `gorm:"primaryKey;size:64" json:"id"`
	Name           string        `gorm:"size:200" json:"name"`
	Category       Category      `gorm:"index;size:32" json:"category"`
	Subcategory    string        `gorm:"size:64" json:"subcategory"`
	OpenedAt       time.Time     `json:"opened_at"`
	ShelfLifeValue int           `json:"shelf_life_value"`
	ShelfLifeUnit  ShelfLifeUnit `gorm:"size:16" json:"shelf_life_unit"`
	Usage          string        `json:"usage"`
	DosePlan       DosePlan      `gorm:"serializer:json" json:"dose_plan"`
	Lot            string        `gorm:"size:64" json:"lot"`
	Store          string        `gorm:"size:128" json:"store"`
	Price          string        `gorm:"size:32" json:"price"`
	Photo          string        `json:"photo,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// TableName Specify table name
func (ProductRecord) TableName() string {
	return "product_records"
}
