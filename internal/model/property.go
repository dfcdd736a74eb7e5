package model

import "time"

// Tower is a building.  It owns the floors that reference it.
type Tower struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Floor belongs to a tower.  FloorPlanImageURL is a blob reference owned by
// the floor: it is deleted together with the floor or when replaced.
type Floor struct {
	ID                uint64    `json:"id"`
	TowerID           uint64    `json:"towerId"`
	Label             string    `json:"label"`
	Number            int       `json:"number"`
	FloorPlanImageURL string    `json:"floorPlanImageUrl,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// RoomType classifies units (studio, 2BR, ...).
type RoomType struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Facility is an amenity attached to units through unit_facilities.
type Facility struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
