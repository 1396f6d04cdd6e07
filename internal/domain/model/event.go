package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus tracks delivery of an outbox event.
type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusPublished  OutboxStatus = "published"
	OutboxStatusFailed     OutboxStatus = "failed"
)

const (
	EventOrderCompleted    = "order.completed"
	EventMedicineOrderPaid = "medicine_order.paid"
)

// OutboxEvent is a domain event stored in the same transaction as the state change it describes.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Status        OutboxStatus
	Attempts      int
	LastError     *string
	CreatedAt     time.Time
}

type eventEnvelope struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	AggregateID string    `json:"aggregate_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Data        any       `json:"data"`
}

type orderCompletedData struct {
	OrderID         string  `json:"order_id"`
	PatientID       string  `json:"patient_id"`
	CaregiverID     string  `json:"caregiver_id"`
	ProofOfService  string  `json:"proof_of_service"`
	HadMedicine     bool    `json:"had_medicine"`
	MedicineOrderID *string `json:"medicine_order_id,omitempty"`
}

type medicineOrderPaidData struct {
	MedicineOrderID string   `json:"medicine_order_id"`
	OrderID         string   `json:"order_id"`
	SessionID       string   `json:"session_id"`
	LineIDs         []string `json:"line_ids"`
	Amount          int64    `json:"amount"`
}

// NewOrderCompletedEvent builds the event emitted when a caregiver finishes an order.
func NewOrderCompletedEvent(order *Order, proof string, hadMedicine bool, at time.Time) (OutboxEvent, error) {
	return newOutboxEvent("order", order.ID, EventOrderCompleted, at, orderCompletedData{
		OrderID:         order.ID,
		PatientID:       order.PatientID,
		CaregiverID:     order.CaregiverID,
		ProofOfService:  proof,
		HadMedicine:     hadMedicine,
		MedicineOrderID: order.MedicineOrderID,
	})
}

// NewMedicineOrderPaidEvent builds the event emitted when a payment session is finalized.
func NewMedicineOrderPaidEvent(order *MedicineOrder, session *PaymentSession, at time.Time) (OutboxEvent, error) {
	return newOutboxEvent("medicine_order", order.ID, EventMedicineOrderPaid, at, medicineOrderPaidData{
		MedicineOrderID: order.ID,
		OrderID:         order.OrderID,
		SessionID:       session.ID,
		LineIDs:         session.LineIDs,
		Amount:          session.Amount,
	})
}

func newOutboxEvent(aggregateType, aggregateID, eventType string, at time.Time, data any) (OutboxEvent, error) {
	envelope := eventEnvelope{
		EventID:     uuid.NewString(),
		EventType:   eventType,
		AggregateID: aggregateID,
		OccurredAt:  at.UTC(),
		Data:        data,
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return OutboxEvent{}, err
	}
	return OutboxEvent{
		ID:            envelope.EventID,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		Status:        OutboxStatusPending,
		CreatedAt:     envelope.OccurredAt,
	}, nil
}
