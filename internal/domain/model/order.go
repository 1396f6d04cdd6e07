package model

import "time"

// OrderStatus describes service order lifecycle.
type OrderStatus string

const (
	OrderStatusOngoing   OrderStatus = "Ongoing"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCanceled  OrderStatus = "Canceled"
)

// Order is a booked caregiving engagement between a patient and a caregiver.
//
// CompletedAt and ProofOfService are only set by the transition to Completed.
type Order struct {
	ID              string
	PatientID       string
	CaregiverID     string
	AppointmentID   string
	Status          OrderStatus
	Rate            *float64
	ProofOfService  *string
	MedicineOrderID *string
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

// Ongoing reports whether the order still accepts mutations.
func (o *Order) Ongoing() bool {
	return o.Status == OrderStatusOngoing
}

// Rated reports whether the patient already left a rating.
func (o *Order) Rated() bool {
	return o.Rate != nil
}

// HasParticipant reports whether the user is the patient or the caregiver of the order.
func (o *Order) HasParticipant(userID string) bool {
	return userID != "" && (o.PatientID == userID || o.CaregiverID == userID)
}
