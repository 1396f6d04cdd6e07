package dto

import "time"

// StartPaymentRequest selects lines to pay for.
type StartPaymentRequest struct {
	LineIDs   []string `json:"line_ids"`
	SelectAll bool     `json:"select_all"`
}

// PaymentSessionResponse describes an open virtual account transfer.
type PaymentSessionResponse struct {
	ID               string     `json:"id"`
	LineIDs          []string   `json:"line_ids"`
	Amount           int64      `json:"amount"`
	AmountDisplay    string     `json:"amount_display"`
	VirtualAccount   string     `json:"virtual_account"`
	ExpiresAt        time.Time  `json:"expires_at"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Expired          bool       `json:"expired"`
	ConfirmedAt      *time.Time `json:"confirmed_at,omitempty"`
	FinalizedAt      *time.Time `json:"finalized_at,omitempty"`
}

// PaymentViewResponse is what the patient sees for a medicine order.
type PaymentViewResponse struct {
	State         string                  `json:"state"`
	MedicineOrder MedicineOrderResponse   `json:"medicine_order"`
	Session       *PaymentSessionResponse `json:"session,omitempty"`
}
