package dto

import "time"

// UserResponse describes an account without its credentials.
type UserResponse struct {
	ID        string    `json:"id"`
	Login     string    `json:"login"`
	Role      string    `json:"role"`
	Approval  string    `json:"approval"`
	CreatedAt time.Time `json:"created_at"`
}

// ApprovalRequest carries the review outcome for a caregiver.
type ApprovalRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateUserRequest edits an account. Empty fields are left unchanged.
type UpdateUserRequest struct {
	Login string `json:"login"`
	Role  string `json:"role"`
}

// AdminOrderResponse is one order with its participants, medicine order and payment.
type AdminOrderResponse struct {
	Order         OrderResponse           `json:"order"`
	Patient       *UserResponse           `json:"patient,omitempty"`
	Caregiver     *UserResponse           `json:"caregiver,omitempty"`
	MedicineOrder *MedicineOrderResponse  `json:"medicine_order,omitempty"`
	PaymentState  string                  `json:"payment_state,omitempty"`
	Payment       *PaymentSessionResponse `json:"payment,omitempty"`
}
