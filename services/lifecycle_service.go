// services/lifecycle_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"hostel-backend/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	// unpaid pending allocations older than this are released
	allocationGracePeriod = 72 * time.Hour
	// one late-fee application per billing per this window
	lateFeePeriod = 7 * 24 * time.Hour
)

// lateFeeRate is 5% of the current total owed, compounding.
var lateFeeRate = decimal.RequireFromString("0.05")

// JobResult is the machine-readable summary of one lifecycle job run.
type JobResult struct {
	Job      string `json:"job"`
	Examined int64  `json:"examined"`
	Updated  int64  `json:"updated"`
	Failed   int64  `json:"failed"`
}

// LifecycleService owns the timer-driven billing/allocation transitions.
// Every job is idempotent and safe under overlapping invocation: each row
// update is scoped to the state it was read in, so a second runner simply
// matches zero rows.
type LifecycleService struct {
	DB    *gorm.DB
	Rooms *RoomService
}

func NewLifecycleService(db *gorm.DB, rooms *RoomService) *LifecycleService {
	return &LifecycleService{DB: db, Rooms: rooms}
}

// MarkOverdue flips unpaid and partially paid billings past their due date
// to overdue. One filter-scoped statement; running it twice in a row
// affects zero additional rows. Examined counts the candidates seen before
// the update, so a row that settles in between shows up as examined but
// not updated.
func (s *LifecycleService) MarkOverdue() (JobResult, error) {
	result := JobResult{Job: "mark_overdue"}
	now := time.Now().UTC()
	open := []models.BillingStatus{models.BillingUnpaid, models.BillingPartiallyPaid}

	var candidates int64
	if err := s.DB.Model(&models.Billing{}).
		Where("status IN ? AND due_date < ?", open, now).
		Count(&candidates).Error; err != nil {
		return result, fmt.Errorf("mark_overdue: %w", err)
	}
	result.Examined = candidates

	res := s.DB.Model(&models.Billing{}).
		Where("status IN ? AND due_date < ?", open, now).
		Updates(map[string]interface{}{"status": models.BillingOverdue})
	if res.Error != nil {
		return result, fmt.Errorf("mark_overdue: %w", res.Error)
	}

	result.Updated = res.RowsAffected
	return result, nil
}

// AccrueLateFees adds 5% of the current total owed to every overdue
// billing, at most once per accrual period. The period guard lives on the
// row (late_fee_applied_at), not in the scheduler, so double invocation
// within a week cannot double-charge.
func (s *LifecycleService) AccrueLateFees() (JobResult, error) {
	result := JobResult{Job: "accrue_late_fees"}
	now := time.Now().UTC()
	cutoff := now.Add(-lateFeePeriod)

	var bills []models.Billing
	if err := s.DB.
		Where("status = ? AND (late_fee_applied_at IS NULL OR late_fee_applied_at <= ?)",
			models.BillingOverdue, cutoff).
		Find(&bills).Error; err != nil {
		return result, fmt.Errorf("accrue_late_fees: %w", err)
	}
	result.Examined = int64(len(bills))

	for i := range bills {
		bill := &bills[i]
		fee := bill.TotalOwed().Mul(lateFeeRate).Round(2)
		res := s.DB.Model(&models.Billing{}).
			Where("id = ? AND status = ? AND late_fee = ? AND (late_fee_applied_at IS NULL OR late_fee_applied_at <= ?)",
				bill.ID, models.BillingOverdue, bill.LateFee, cutoff).
			Updates(map[string]interface{}{
				"late_fee":            bill.LateFee.Add(fee),
				"late_fee_applied_at": now,
			})
		if res.Error != nil {
			result.Failed++
			log.Printf("accrue_late_fees: billing %d: %v", bill.ID, res.Error)
			continue
		}
		// zero rows: another runner got there first, nothing to do
		result.Updated += res.RowsAffected
	}
	return result, nil
}

// CancelUnpaidAllocations releases rooms held by pending allocations whose
// first invoice stayed below the activation threshold past the grace
// period. The room release mirrors the booking increment: same row lock,
// same transaction.
func (s *LifecycleService) CancelUnpaidAllocations() (JobResult, error) {
	result := JobResult{Job: "cancel_unpaid_allocations"}
	cutoff := time.Now().UTC().Add(-allocationGracePeriod)

	var allocs []models.Allocation
	if err := s.DB.
		Where("status = ? AND allocation_date < ?", models.AllocationPending, cutoff).
		Find(&allocs).Error; err != nil {
		return result, fmt.Errorf("cancel_unpaid_allocations: %w", err)
	}
	result.Examined = int64(len(allocs))

	for i := range allocs {
		alloc := &allocs[i]
		updated, err := s.cancelOne(alloc)
		if err != nil {
			result.Failed++
			log.Printf("cancel_unpaid_allocations: allocation %d: %v", alloc.ID, err)
			continue
		}
		if updated {
			result.Updated++
		}
	}
	return result, nil
}

func (s *LifecycleService) cancelOne(alloc *models.Allocation) (bool, error) {
	var bill models.Billing
	err := s.DB.
		Where("allocation_id = ?", alloc.ID).
		Order("date_issued ASC").
		First(&bill).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// no invoice to judge by; leave the allocation alone
			return false, nil
		}
		return false, fmt.Errorf("load billing: %w", err)
	}

	if bill.PaidAmount.GreaterThanOrEqual(activationCutoff(bill.Amount)) {
		// paid enough to keep the hold; activation is the reconciler's job
		return false, nil
	}

	cancelled := false
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		room, err := s.Rooms.LockForUpdate(tx, alloc.RoomID)
		if err != nil {
			return err
		}

		res := tx.Model(&models.Allocation{}).
			Where("id = ? AND status = ?", alloc.ID, models.AllocationPending).
			Updates(map[string]interface{}{
				"status":            models.AllocationCancelled,
				"active_student_id": nil,
			})
		if res.Error != nil {
			return fmt.Errorf("cancel allocation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// activated or cancelled since the sweep selected it
			return nil
		}

		if err := s.Rooms.ApplyOccupancyDelta(tx, room, -1); err != nil {
			return err
		}
		cancelled = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cancelled, nil
}
