package model

import "time"

// MedicineType classifies catalog items.
type MedicineType string

const (
	MedicineTypeBranded MedicineType = "Branded"
	MedicineTypeGeneric MedicineType = "Generic"
)

// Valid reports whether the type is known.
func (t MedicineType) Valid() bool {
	return t == MedicineTypeBranded || t == MedicineTypeGeneric
}

// Medicine is a purchasable catalog item. Price is in whole currency units.
type Medicine struct {
	ID        string
	Name      string
	Type      MedicineType
	Price     int64
	PhotoURL  *string
	ExpDate   *time.Time
	CreatedBy *string
	CreatedAt time.Time
}

// MedicineInput is the raw "add new medicine" form.
type MedicineInput struct {
	Name     string
	Type     string
	Price    string
	ExpDate  string
	PhotoURL string
}
