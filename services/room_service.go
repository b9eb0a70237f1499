package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"hostel-backend/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoomService is the room store: locked read-and-mutate for the booking
// path plus the small admin surface.
type RoomService struct {
	DB *gorm.DB
}

func NewRoomService(db *gorm.DB) *RoomService {
	return &RoomService{DB: db}
}

// LockForUpdate loads a room under an exclusive row lock. Must run inside
// the same transaction as the subsequent write.
func (s *RoomService) LockForUpdate(tx *gorm.DB, id uint) (*models.Room, error) {
	var room models.Room
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to lock room %d: %w", id, err)
	}
	return &room, nil
}

// ApplyOccupancyDelta moves occupancy by delta and recomputes status, as a
// compare-and-set on the previous occupancy. Callers hold the row lock, so
// a zero-rows result means the world changed underneath us and the whole
// transaction must abort.
func (s *RoomService) ApplyOccupancyDelta(tx *gorm.DB, room *models.Room, delta int) error {
	next := room.Occupancy + delta
	if next < 0 || next > room.Capacity {
		log.Printf("INVARIANT: room %d occupancy would become %d (capacity %d)", room.ID, next, room.Capacity)
		return ErrInvariantViolation
	}
	status := models.RoomStatusFor(next, room.Capacity, room.Status)

	res := tx.Model(&models.Room{}).
		Where("id = ? AND occupancy = ?", room.ID, room.Occupancy).
		Updates(map[string]interface{}{"occupancy": next, "status": status})
	if res.Error != nil {
		return fmt.Errorf("failed to update room %d occupancy: %w", room.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}

	room.Occupancy = next
	room.Status = status
	return nil
}

type RoomFilter struct {
	Status   models.RoomStatus
	Gender   models.Gender
	Building string
	Bookable bool
}

func (s *RoomService) List(f RoomFilter) ([]models.Room, error) {
	q := s.DB.Model(&models.Room{}).Order("building, room_number")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Gender != "" {
		q = q.Where("gender = ?", f.Gender)
	}
	if f.Building != "" {
		q = q.Where("building = ?", f.Building)
	}
	if f.Bookable {
		q = q.Where("status NOT IN ? AND occupancy < capacity",
			[]models.RoomStatus{models.RoomMaintenance, models.RoomReserved})
	}

	var rooms []models.Room
	if err := q.Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

func (s *RoomService) GetByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.DB.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to load room %d: %w", id, err)
	}
	return &room, nil
}

func (s *RoomService) Create(room *models.Room) error {
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	room.Building = strings.TrimSpace(room.Building)
	if room.RoomNumber == "" || room.Building == "" {
		return fmt.Errorf("%w: room number and building required", ErrInvalidRoom)
	}
	if room.Capacity < 1 || room.Capacity > 4 {
		return fmt.Errorf("%w: capacity must be 1-4", ErrInvalidRoom)
	}
	room.Occupancy = 0
	if room.Status != models.RoomMaintenance && room.Status != models.RoomReserved {
		room.Status = models.RoomVacant
	}

	if err := s.DB.Create(room).Error; err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateRoom
		}
		return fmt.Errorf("failed to create room: %w", err)
	}
	return nil
}

// SetMaintenance toggles the sticky maintenance state. A room holding
// residents cannot be pulled into maintenance; the CAS guards against a
// concurrent booking sneaking in.
func (s *RoomService) SetMaintenance(id uint, on bool) (*models.Room, error) {
	room, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	var next models.RoomStatus
	if on {
		if room.Occupancy > 0 {
			return nil, ErrRoomOccupied
		}
		next = models.RoomMaintenance
	} else {
		next = models.RoomStatusFor(room.Occupancy, room.Capacity, models.RoomVacant)
	}

	res := s.DB.Model(&models.Room{}).
		Where("id = ? AND occupancy = ? AND status = ?", room.ID, room.Occupancy, room.Status).
		Updates(map[string]interface{}{"status": next})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update room %d status: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	room.Status = next
	return room, nil
}
