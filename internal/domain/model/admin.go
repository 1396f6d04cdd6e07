package model

// AdminOrderDetail is the administrator's view of one order with everything attached to it.
type AdminOrderDetail struct {
	Order         Order
	Patient       *User
	Caregiver     *User
	MedicineOrder *MedicineOrder
	Payment       *PaymentSession
	PaymentState  PaymentState
}

// EvidenceFile is a stored proof of service ready to be served.
type EvidenceFile struct {
	Ref         string
	ContentType string
	Data        []byte
}
