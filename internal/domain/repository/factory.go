package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Medicines() MedicineRepository
	MedicineOrders() MedicineOrderRepository
	Payments() PaymentRepository
	Messages() MessageRepository
	Outbox() OutboxRepository
}
