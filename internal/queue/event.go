// Package queue defines the reservation events exchanged over RabbitMQ,
// the publisher used by the reservation service and the consumer that
// writes them to the audit log.
package queue

import (
	"time"

	"github.com/iliyamo/unit-reservation/internal/model"
)

// Event types, one per reservation status reached.
const (
	EventReservationCreated  = "reservation.created"
	EventReservationPaid     = "reservation.paid"
	EventReservationBooked   = "reservation.booked"
	EventReservationDeclined = "reservation.declined"
)

// ReservationEvent is published after a reservation changes state.  It
// carries enough information for the audit log and for notifications
// without querying the primary database.
type ReservationEvent struct {
	Type            string                  `json:"type"`
	ReservationUUID string                  `json:"reservation_uuid"`
	UnitID          uint64                  `json:"unit_id"`
	CustomerID      uint64                  `json:"customer_id"`
	SalesmanID      uint64                  `json:"salesman_id"`
	ActorID         uint64                  `json:"actor_id"`
	Status          model.ReservationStatus `json:"status"`
	UnitStatus      model.UnitStatus        `json:"unit_status,omitempty"`
	PaymentProofURL string                  `json:"payment_proof_url,omitempty"`
	OccurredAt      time.Time               `json:"occurred_at"`
}

// NewReservationEvent describes r after it entered its current status.
func NewReservationEvent(r model.Reservation, actorID uint64) ReservationEvent {
	ev := ReservationEvent{
		Type:            eventType(r.Status),
		ReservationUUID: r.UUID,
		UnitID:          r.UnitID,
		CustomerID:      r.CustomerID,
		SalesmanID:      r.SalesmanID,
		ActorID:         actorID,
		Status:          r.Status,
		PaymentProofURL: r.PaymentProofURL,
		OccurredAt:      time.Now().UTC(),
	}
	if us, ok := r.Status.UnitStatus(); ok {
		ev.UnitStatus = us
	}
	return ev
}

func eventType(s model.ReservationStatus) string {
	switch s {
	case model.ReservationPaid:
		return EventReservationPaid
	case model.ReservationBooked:
		return EventReservationBooked
	case model.ReservationDeclined:
		return EventReservationDeclined
	}
	return EventReservationCreated
}
