package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type BillingStatus string

const (
	BillingUnpaid        BillingStatus = "unpaid"
	BillingPartiallyPaid BillingStatus = "partially_paid"
	BillingFullyPaid     BillingStatus = "fully_paid"
	BillingOverdue       BillingStatus = "overdue"
	BillingCancelled     BillingStatus = "cancelled"
)

// PaidEpsilon absorbs rounding drift when deciding fully-paid: a billing is
// settled once paid-to-date is within 0.01 of the total owed.
var PaidEpsilon = decimal.New(1, -2)

// Terminal reports whether the status admits no further transitions.
func (s BillingStatus) Terminal() bool {
	return s == BillingCancelled
}

// CanTransition encodes the legal forward moves of the billing state
// machine. Cancelled is reachable from any non-terminal state; everything
// else only moves forward.
func (s BillingStatus) CanTransition(to BillingStatus) bool {
	if s == to {
		return false
	}
	if to == BillingCancelled {
		return !s.Terminal()
	}
	switch s {
	case BillingUnpaid:
		return to == BillingPartiallyPaid || to == BillingFullyPaid || to == BillingOverdue
	case BillingPartiallyPaid:
		return to == BillingFullyPaid || to == BillingOverdue
	case BillingOverdue:
		return to == BillingPartiallyPaid || to == BillingFullyPaid
	default:
		return false
	}
}

// BillingStatusFor recomputes payment status from the facts alone. Overdue
// is a time-driven state applied by the lifecycle jobs, not derived here.
func BillingStatusFor(paid, totalOwed decimal.Decimal) BillingStatus {
	if paid.GreaterThanOrEqual(totalOwed.Sub(PaidEpsilon)) {
		return BillingFullyPaid
	}
	if paid.IsPositive() {
		return BillingPartiallyPaid
	}
	return BillingUnpaid
}

type Billing struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	StudentID    uint `gorm:"index;column:student_id" json:"student_id"`
	AllocationID uint `gorm:"index;column:allocation_id" json:"allocation_id"`
	HostelID     uint `gorm:"column:hostel_id" json:"hostel_id"`

	Amount     decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`   // principal
	LateFee    decimal.Decimal `gorm:"type:decimal(12,2)" json:"late_fee"` // monotone once overdue
	PaidAmount decimal.Decimal `gorm:"column:paid_amount;type:decimal(12,2)" json:"paid_amount"`

	Status     BillingStatus `gorm:"size:32" json:"status"`
	DateIssued time.Time     `gorm:"column:date_issued" json:"date_issued"`
	DueDate    time.Time     `gorm:"column:due_date;index" json:"due_date"`

	// Week bucket for late-fee accrual; a fee is applied at most once per
	// accrual period no matter how often the job fires.
	LateFeeAppliedAt *time.Time `gorm:"column:late_fee_applied_at" json:"-"`

	Student    Student    `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Allocation Allocation `gorm:"foreignKey:AllocationID" json:"allocation,omitempty"`
}

// TotalOwed is principal plus accrued late fees.
func (b *Billing) TotalOwed() decimal.Decimal {
	return b.Amount.Add(b.LateFee)
}

// Outstanding is what is still payable, never negative.
func (b *Billing) Outstanding() decimal.Decimal {
	out := b.TotalOwed().Sub(b.PaidAmount)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}
