package dto

import "time"

// BookOrderRequest books a caregiver for an appointment.
type BookOrderRequest struct {
	CaregiverID   string `json:"caregiver_id" binding:"required"`
	AppointmentID string `json:"appointment_id" binding:"required"`
}

// RateOrderRequest carries the patient's rating.
type RateOrderRequest struct {
	Rate float64 `json:"rate"`
}

// OrderResponse describes a service order.
type OrderResponse struct {
	ID              string     `json:"id"`
	PatientID       string     `json:"patient_id"`
	CaregiverID     string     `json:"caregiver_id"`
	AppointmentID   string     `json:"appointment_id"`
	Status          string     `json:"status"`
	Rate            *float64   `json:"rate,omitempty"`
	ProofOfService  *string    `json:"proof_of_service,omitempty"`
	MedicineOrderID *string    `json:"medicine_order_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// SelectionRequest is one entry of the "medicines" form field of the finish request.
type SelectionRequest struct {
	MedicineID string `json:"medicine_id"`
	Quantity   int    `json:"quantity"`
}

// FinishOrderResponse reports the outcome of finishing an order.
type FinishOrderResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	HadMedicine    bool                   `json:"had_medicine"`
	ProofOfService string                 `json:"proof_of_service"`
	CompletedAt    time.Time              `json:"completed_at"`
	MedicineOrder  *MedicineOrderResponse `json:"medicine_order,omitempty"`
}
