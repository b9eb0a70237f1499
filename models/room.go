package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomVacant            RoomStatus = "vacant"
	RoomPartiallyOccupied RoomStatus = "partially_occupied"
	RoomFullyOccupied     RoomStatus = "fully_occupied"
	RoomMaintenance       RoomStatus = "maintenance"
	RoomReserved          RoomStatus = "reserved"
)

type Room struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	HostelID uint `gorm:"index;column:hostel_id" json:"hostel_id"`

	// (room_number, building) must stay unique across the site
	RoomNumber string `json:"roomNumber" gorm:"column:room_number;uniqueIndex:uniq_room_building;size:50"`
	Building   string `json:"building" gorm:"uniqueIndex:uniq_room_building;size:100"`
	Floor      string `json:"floor" gorm:"size:10"`

	Capacity  int             `json:"capacity"`
	Occupancy int             `json:"occupancy"`
	Status    RoomStatus      `json:"status" gorm:"size:32"`
	Gender    Gender          `json:"gender" gorm:"size:16"`
	Rate      decimal.Decimal `json:"rate" gorm:"type:decimal(12,2)"` // yearly rate

	Hostel Hostel `gorm:"foreignKey:HostelID" json:"hostel,omitempty"`
}

// RoomStatusFor recomputes the occupancy projection of a room's status.
// Maintenance and reserved are sticky operator states, never overwritten
// by occupancy changes.
func RoomStatusFor(occupancy, capacity int, current RoomStatus) RoomStatus {
	if current == RoomMaintenance || current == RoomReserved {
		return current
	}
	switch {
	case occupancy <= 0:
		return RoomVacant
	case occupancy >= capacity:
		return RoomFullyOccupied
	default:
		return RoomPartiallyOccupied
	}
}

// Bookable reports whether a new allocation may target this room.
func (r *Room) Bookable() bool {
	if r.Status == RoomMaintenance || r.Status == RoomReserved {
		return false
	}
	return r.Occupancy < r.Capacity
}
