package model

import "time"

// PaymentState is the patient-facing state of an additional-medicine payment.
type PaymentState string

const (
	PaymentStateRecommended          PaymentState = "Recommended"
	PaymentStateAwaitingConfirmation PaymentState = "AwaitingConfirmation"
	PaymentStateConfirmed            PaymentState = "Confirmed"
	PaymentStateVerified             PaymentState = "Verified"
	PaymentStateSkipped              PaymentState = "Skipped"
)

// ConfirmationSource records who confirmed the transfer.
type ConfirmationSource string

const (
	ConfirmedByPatient ConfirmationSource = "patient"
	ConfirmedByGateway ConfirmationSource = "gateway"
)

// StaticVirtualAccount is issued when no payment gateway is configured.
const StaticVirtualAccount = "12345-67890-87654"

// VirtualAccount is the transfer destination shown to the patient.
type VirtualAccount struct {
	Number   string
	Provider string
}

// PaymentSession tracks one attempt to pay for a subset of recommended lines.
type PaymentSession struct {
	ID              string
	MedicineOrderID string
	PatientID       string
	LineIDs         []string
	Amount          int64
	VirtualAccount  string
	ExpiresAt       time.Time
	ConfirmedAt     *time.Time
	ConfirmedVia    *ConfirmationSource
	FinalizedAt     *time.Time
	CreatedAt       time.Time
}

func (s *PaymentSession) Confirmed() bool {
	return s.ConfirmedAt != nil
}

func (s *PaymentSession) Finalized() bool {
	return s.FinalizedAt != nil
}

// RemainingSeconds returns the countdown value at now, never negative.
func (s *PaymentSession) RemainingSeconds(now time.Time) int64 {
	left := s.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(left / time.Second)
}

// Expired reports whether the countdown reached zero.
func (s *PaymentSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// PaymentView is what the patient sees for a medicine order.
type PaymentView struct {
	MedicineOrder    *MedicineOrder
	State            PaymentState
	Session          *PaymentSession
	RemainingSeconds int64
	Expired          bool
}

// ResolvePaymentState derives the view state from the header and its open session.
func ResolvePaymentState(order *MedicineOrder, session *PaymentSession) PaymentState {
	switch order.IsPaid {
	case PaymentStatusVerified:
		return PaymentStateVerified
	case PaymentStatusSkipped:
		return PaymentStateSkipped
	}
	if session == nil || session.Finalized() {
		return PaymentStateRecommended
	}
	if session.Confirmed() {
		return PaymentStateConfirmed
	}
	return PaymentStateAwaitingConfirmation
}

// StartPaymentInput is the patient's choice of lines to pay for.
type StartPaymentInput struct {
	PatientID       string
	MedicineOrderID string
	LineIDs         []string
	SelectAll       bool
}
