package model

import "time"

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	ReservationReserved ReservationStatus = "reserved"
	ReservationPaid     ReservationStatus = "paid"
	ReservationBooked   ReservationStatus = "booked"
	ReservationDeclined ReservationStatus = "declined"
)

// UnitStatus returns the unit status implied by a reservation entering s.
// The second value is false when s leaves the unit untouched.
func (s ReservationStatus) UnitStatus() (UnitStatus, bool) {
	switch s {
	case ReservationPaid:
		return UnitReserved, true
	case ReservationBooked:
		return UnitBooked, true
	case ReservationDeclined:
		return UnitAvailable, true
	}
	return "", false
}

// PaymentType is how the customer intends to pay.
type PaymentType string

const (
	PaymentCash        PaymentType = "cash"
	PaymentCredit      PaymentType = "credit"
	PaymentInstallment PaymentType = "installment"
	PaymentMortgage    PaymentType = "mortgage"
)

// Valid reports whether p is one of the known payment types.
func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentCredit, PaymentInstallment, PaymentMortgage:
		return true
	}
	return false
}

// Customer is created once per reservation; customers are never shared.
type Customer struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	KTPNumber      string    `json:"ktpNumber"`
	NPWPNumber     string    `json:"npwpNumber"`
	Email          string    `json:"email"`
	PhoneNumber    string    `json:"phoneNumber"`
	Address        string    `json:"address"`
	City           string    `json:"city"`
	Province       string    `json:"province"`
	CustomerSource string    `json:"customerSource"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Reservation is a customer's claim on a unit.  It is keyed by UUID rather
// than a sequential id.
//
// Fields:
//  UnitID          – reserved unit.
//  CustomerID      – customer created together with the reservation.
//  SalesmanID      – user who created the reservation.
//  Status          – reserved, paid, booked or declined.
//  PaymentProofURL – blob reference of the uploaded proof, empty until paid.
type Reservation struct {
	UUID                string            `json:"uuid"`
	UnitID              uint64            `json:"unitId"`
	CustomerID          uint64            `json:"customerId"`
	SalesmanID          uint64            `json:"salesmanId"`
	MediaSourceCategory string            `json:"mediaSourceCategory"`
	MediaSourceDesc     string            `json:"mediaSourceDesc"`
	Notes               string            `json:"notes"`
	PaymentType         PaymentType       `json:"paymentType"`
	Status              ReservationStatus `json:"status"`
	PaymentProofURL     string            `json:"paymentProofUrl"`
	CreatedAt           time.Time         `json:"createdAt"`
	UpdatedAt           time.Time         `json:"updatedAt"`
}

// ReservationDetail embeds the related unit, customer and salesman.
type ReservationDetail struct {
	Reservation
	Unit     Unit     `json:"unit"`
	Customer Customer `json:"customer"`
	Salesman User     `json:"salesman"`
}
