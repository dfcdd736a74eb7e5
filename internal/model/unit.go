package model

import "time"

// UnitStatus is the sales state of a unit.  It is driven by the
// reservation lifecycle and never set directly by salespeople.
type UnitStatus string

const (
	UnitAvailable UnitStatus = "available"
	UnitReserved  UnitStatus = "reserved"
	UnitBooked    UnitStatus = "booked"
)

// Unit represents a sellable space located on a floor.
//
// Fields:
//  UnitCode      – human readable code, e.g. "A-12-03".
//  PriceOffer    – listed price.
//  SemiGrossArea – area in square meters.
//  Status        – available, reserved or booked.
type Unit struct {
	ID            uint64     `json:"id"`
	UnitCode      string     `json:"unitCode"`
	FloorID       uint64     `json:"floorId"`
	RoomTypeID    uint64     `json:"roomTypeId"`
	PriceOffer    float64    `json:"priceOffer"`
	SemiGrossArea float64    `json:"semiGrossArea"`
	Status        UnitStatus `json:"status"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// UnitImage is a picture of a unit.  ImageURL is an owned blob reference.
type UnitImage struct {
	ID          uint64 `json:"id"`
	UnitID      uint64 `json:"unitId"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
}

// UnitFacility is the join row between a unit and a facility.
type UnitFacility struct {
	UnitID     uint64 `json:"unitId"`
	FacilityID uint64 `json:"facilityId"`
}

// FacilityRef is the facility summary embedded in unit listings.
type FacilityRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// UnitDetail is a unit together with the relations returned by the unit
// listing: images, facility names and the room type name.
type UnitDetail struct {
	Unit
	RoomTypeName string        `json:"roomTypeName"`
	Images       []UnitImage   `json:"images"`
	Facilities   []FacilityRef `json:"facilities"`
}
