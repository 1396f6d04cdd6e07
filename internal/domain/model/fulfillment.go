package model

import "time"

// SelectionInput is one requested (medicine, quantity) pair.
type SelectionInput struct {
	MedicineID string
	Quantity   int
}

// FinishOrderInput carries everything the caregiver submits when finishing an order.
type FinishOrderInput struct {
	OrderID     string
	CaregiverID string
	Selections  []SelectionInput
	Evidence    []byte
}

// FinishOrderResult describes the completed order.
type FinishOrderResult struct {
	Success        bool
	Message        string
	HadMedicine    bool
	Replayed       bool
	MedicineOrder  *MedicineOrder
	ProofOfService string
	CompletedAt    time.Time
}
