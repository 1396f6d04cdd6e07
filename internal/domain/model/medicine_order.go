package model

import (
	"time"

	"github.com/polkiloo/homecare/internal/pkg/money"
)

// DefaultDeliveryFee is the flat fee added to every non-empty medicine order.
const DefaultDeliveryFee int64 = 10000

// PaymentStatus tracks settlement of a medicine order.
type PaymentStatus string

const (
	PaymentStatusUnverified PaymentStatus = "Unverified"
	PaymentStatusVerified   PaymentStatus = "Verified"
	PaymentStatusSkipped    PaymentStatus = "Skipped"
)

// MedicineOrder is the header of medicines attached to a service order.
// It exclusively owns its lines.
type MedicineOrder struct {
	ID             string
	OrderID        string
	IdempotencyKey string
	TotalQty       int
	SubTotal       int64
	DeliveryFee    int64
	TotalPrice     int64
	IsPaid         PaymentStatus
	PaidAt         *time.Time
	CreatedAt      time.Time
	Lines          []MedicineOrderLine
}

// MedicineOrderLine is one (medicine, quantity) entry of a medicine order.
type MedicineOrderLine struct {
	ID              string
	MedicineOrderID string
	MedicineID      string
	MedicineName    string
	Quantity        int
	UnitPrice       int64
	TotalPrice      int64
}

// Totals summarises quantities and prices of a medicine order.
type Totals struct {
	TotalQty    int
	SubTotal    int64
	DeliveryFee int64
	TotalPrice  int64
}

// ComputeTotals prices a caregiver selection. TotalPrice always equals SubTotal + DeliveryFee.
// Amounts that do not fit an int64 fail with money.ErrOverflow.
func ComputeTotals(items []SelectionItem, deliveryFee int64) (Totals, error) {
	totals := Totals{DeliveryFee: deliveryFee}
	for _, item := range items {
		line, err := item.LineTotal()
		if err != nil {
			return Totals{}, err
		}
		if totals.SubTotal, err = money.Sum(totals.SubTotal, line); err != nil {
			return Totals{}, err
		}
		totals.TotalQty += item.Quantity
	}
	total, err := money.Sum(totals.SubTotal, totals.DeliveryFee)
	if err != nil {
		return Totals{}, err
	}
	totals.TotalPrice = total
	return totals, nil
}

// MedicineOrderDraft carries everything needed to persist a new header with its lines.
type MedicineOrderDraft struct {
	ID             string
	OrderID        string
	IdempotencyKey string
	Totals         Totals
	Lines          []MedicineOrderLine
}

// FulfillmentKey derives the idempotency key of the medicine order created while finishing an order.
func FulfillmentKey(orderID string) string {
	return "fulfillment:" + orderID
}

// SameSelection reports whether the draft asks for exactly the stored medicines and quantities,
// in the same order. Prices are not compared so a catalog change keeps the stored header.
func (m *MedicineOrder) SameSelection(draft MedicineOrderDraft) bool {
	if len(m.Lines) != len(draft.Lines) || m.TotalQty != draft.Totals.TotalQty {
		return false
	}
	for i, line := range m.Lines {
		if line.MedicineID != draft.Lines[i].MedicineID || line.Quantity != draft.Lines[i].Quantity {
			return false
		}
	}
	return true
}
