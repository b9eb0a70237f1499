package services

import (
	"errors"
	"strings"

	mysqldrv "github.com/go-sql-driver/mysql"
)

// Sentinel errors use machine-readable slugs; controllers map them to HTTP
// statuses and human messages in one place.
var (
	// precondition violations (caller-correctable)
	ErrStudentNotFound      = errors.New("student_not_found")
	ErrRoomNotFound         = errors.New("room_not_found")
	ErrBillingNotFound      = errors.New("billing_not_found")
	ErrAllocationNotFound   = errors.New("allocation_not_found")
	ErrOutstandingDebt      = errors.New("outstanding_debt")
	ErrAlreadyAllocated     = errors.New("already_allocated")
	ErrGenderMismatch       = errors.New("gender_mismatch")
	ErrRoomUnavailable      = errors.New("room_unavailable")
	ErrRoomReserved         = errors.New("room_reserved")
	ErrRoomFull             = errors.New("room_full")
	ErrRoomOccupied         = errors.New("room_occupied")
	ErrNotBillingOwner      = errors.New("not_billing_owner")
	ErrBillingCancelled     = errors.New("billing_cancelled")
	ErrInvalidAmount        = errors.New("invalid_amount")
	ErrAmountExceedsBalance = errors.New("amount_exceeds_balance")
	ErrDuplicateRoom        = errors.New("duplicate_room")
	ErrInvalidRoom          = errors.New("invalid_room")

	// payment verification
	ErrReferenceNotFound    = errors.New("reference_not_found")
	ErrAlreadyVerified      = errors.New("already_verified")
	ErrPaymentNotSuccessful = errors.New("payment_not_successful")
	ErrGatewayError         = errors.New("gateway_error")

	// concurrency: a filter-scoped update matched zero rows, so the
	// precondition no longer holds
	ErrConflict = errors.New("conflict")

	// bug-class: defensive, should be unreachable
	ErrInvariantViolation = errors.New("invariant_violation")
)

// isDuplicateKey detects a MySQL unique-key breach (error 1062). The string
// fallback covers wrapped drivers in tests.
func isDuplicateKey(err error) bool {
	var me *mysqldrv.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
