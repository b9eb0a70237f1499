package models

import "time"

type AllocationStatus string

const (
	AllocationPending   AllocationStatus = "pending"
	AllocationActive    AllocationStatus = "active"
	AllocationExpired   AllocationStatus = "expired"
	AllocationCancelled AllocationStatus = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s AllocationStatus) Terminal() bool {
	return s == AllocationExpired || s == AllocationCancelled
}

type Allocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentID uint `gorm:"index;column:student_id" json:"student_id"`
	RoomID    uint `gorm:"index;column:room_id" json:"room_id"`

	AllocationDate time.Time  `gorm:"column:allocation_date" json:"allocation_date"`
	EndDate        *time.Time `gorm:"column:end_date" json:"end_date,omitempty"`

	Status AllocationStatus `gorm:"size:32" json:"status"`

	// Mirrors StudentID while the allocation is pending or active and is
	// NULLed on cancel/expire. The unique index on it is what enforces
	// "at most one open allocation per student" at the database level
	// (MySQL has no partial indexes; NULLs don't collide).
	ActiveStudentID *uint `gorm:"column:active_student_id;uniqueIndex:uniq_active_student" json:"-"`

	Student Student `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Room    Room    `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}
