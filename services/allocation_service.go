// services/allocation_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"hostel-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// default allocation term and first-invoice due window
	defaultTermMonths = 8
	invoiceDueMonths  = 7
	// share of the principal that promotes a pending allocation to active
	activationThreshold = "0.60"
)

// AllocationService is the booking orchestrator plus the allocation ledger.
type AllocationService struct {
	DB    *gorm.DB
	Rooms *RoomService
}

func NewAllocationService(db *gorm.DB, rooms *RoomService) *AllocationService {
	return &AllocationService{DB: db, Rooms: rooms}
}

// BookRoom books a room for a student as one atomic unit: the room row is
// locked for the duration, so two bookings for the same room serialize and
// the loser sees the post-increment occupancy. On any failure nothing is
// persisted.
func (s *AllocationService) BookRoom(studentID, roomID uint, endDate *time.Time) (*models.Allocation, error) {
	var created models.Allocation

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// students with overdue bills may not book
		var overdue int64
		if err := tx.Model(&models.Billing{}).
			Where("student_id = ? AND status = ?", studentID, models.BillingOverdue).
			Count(&overdue).Error; err != nil {
			return fmt.Errorf("failed to check outstanding bills: %w", err)
		}
		if overdue > 0 {
			return ErrOutstandingDebt
		}

		// one open allocation per student; the unique index on
		// active_student_id backstops this check under races
		var open int64
		if err := tx.Model(&models.Allocation{}).
			Where("student_id = ? AND status IN ?", studentID,
				[]models.AllocationStatus{models.AllocationPending, models.AllocationActive}).
			Count(&open).Error; err != nil {
			return fmt.Errorf("failed to check open allocations: %w", err)
		}
		if open > 0 {
			return ErrAlreadyAllocated
		}

		var student models.Student
		if err := tx.First(&student, studentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrStudentNotFound
			}
			return fmt.Errorf("failed to load student %d: %w", studentID, err)
		}

		room, err := s.Rooms.LockForUpdate(tx, roomID)
		if err != nil {
			return err
		}

		if room.Gender != student.Gender {
			return ErrGenderMismatch
		}
		switch room.Status {
		case models.RoomMaintenance:
			return ErrRoomUnavailable
		case models.RoomReserved:
			return ErrRoomReserved
		}
		if room.Occupancy >= room.Capacity {
			return ErrRoomFull
		}

		now := time.Now().UTC()
		end := now.AddDate(0, defaultTermMonths, 0)
		if endDate != nil {
			end = endDate.UTC()
		}

		sid := studentID
		alloc := models.Allocation{
			StudentID:       studentID,
			RoomID:          roomID,
			AllocationDate:  now,
			EndDate:         &end,
			Status:          models.AllocationPending,
			ActiveStudentID: &sid,
		}
		if err := tx.Create(&alloc).Error; err != nil {
			if isDuplicateKey(err) {
				return ErrAlreadyAllocated
			}
			return fmt.Errorf("failed to create allocation: %w", err)
		}

		bill := models.Billing{
			StudentID:    studentID,
			AllocationID: alloc.ID,
			HostelID:     room.HostelID,
			Amount:       room.Rate,
			LateFee:      decimal.Zero,
			PaidAmount:   decimal.Zero,
			Status:       models.BillingUnpaid,
			DateIssued:   now,
			DueDate:      now.AddDate(0, invoiceDueMonths, 0),
		}
		if err := tx.Create(&bill).Error; err != nil {
			return fmt.Errorf("failed to create first invoice: %w", err)
		}

		if err := s.Rooms.ApplyOccupancyDelta(tx, room, +1); err != nil {
			return err
		}

		created = alloc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ActiveAllocation returns the student's open (pending or active)
// allocation, if any.
func (s *AllocationService) ActiveAllocation(studentID uint) (*models.Allocation, error) {
	var alloc models.Allocation
	err := s.DB.Preload("Room").
		Where("student_id = ? AND status IN ?", studentID,
			[]models.AllocationStatus{models.AllocationPending, models.AllocationActive}).
		First(&alloc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAllocationNotFound
		}
		return nil, fmt.Errorf("failed to load allocation: %w", err)
	}
	return &alloc, nil
}

// HistoryForStudent lists all allocations, newest first.
func (s *AllocationService) HistoryForStudent(studentID uint) ([]models.Allocation, error) {
	var list []models.Allocation
	if err := s.DB.Preload("Room").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return list, nil
}

// activationCutoff is the paid share of the principal that promotes a
// pending allocation to active.
func activationCutoff(principal decimal.Decimal) decimal.Decimal {
	return principal.Mul(decimal.RequireFromString(activationThreshold))
}

// activateIfThresholdMet promotes a pending allocation once its invoice is
// sufficiently paid. Runs inside the reconciler's transaction; losing the
// pending->active CAS is fine (already active, or cancelled underneath).
func (s *AllocationService) activateIfThresholdMet(tx *gorm.DB, allocationID uint, paid, principal decimal.Decimal) error {
	if paid.LessThan(activationCutoff(principal)) {
		return nil
	}
	res := tx.Model(&models.Allocation{}).
		Where("id = ? AND status = ?", allocationID, models.AllocationPending).
		Updates(map[string]interface{}{"status": models.AllocationActive})
	if res.Error != nil {
		return fmt.Errorf("failed to activate allocation %d: %w", allocationID, res.Error)
	}
	return nil
}
