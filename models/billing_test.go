package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBillingStatusFor(t *testing.T) {
	tests := []struct {
		name  string
		paid  string
		owed  string
		want  BillingStatus
	}{
		{"nothing paid", "0", "1000", BillingUnpaid},
		{"partially paid", "40", "100", BillingPartiallyPaid},
		{"80 of 100 stays partial", "80", "100", BillingPartiallyPaid},
		{"exactly paid", "100", "100", BillingFullyPaid},
		{"within epsilon", "99.99", "100", BillingFullyPaid},
		{"just below epsilon", "99.98", "100", BillingPartiallyPaid},
		{"overpaid rounding", "100.01", "100", BillingFullyPaid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BillingStatusFor(dec(tt.paid), dec(tt.owed)))
		})
	}
}

func TestBillingCanTransition(t *testing.T) {
	// forward moves
	assert.True(t, BillingUnpaid.CanTransition(BillingPartiallyPaid))
	assert.True(t, BillingUnpaid.CanTransition(BillingFullyPaid))
	assert.True(t, BillingUnpaid.CanTransition(BillingOverdue))
	assert.True(t, BillingPartiallyPaid.CanTransition(BillingOverdue))
	assert.True(t, BillingOverdue.CanTransition(BillingPartiallyPaid))
	assert.True(t, BillingOverdue.CanTransition(BillingFullyPaid))

	// cancellation from any non-terminal state
	for _, s := range []BillingStatus{BillingUnpaid, BillingPartiallyPaid, BillingFullyPaid, BillingOverdue} {
		assert.True(t, s.CanTransition(BillingCancelled), "cancel from %s", s)
	}

	// no backward moves, no leaving cancelled
	assert.False(t, BillingFullyPaid.CanTransition(BillingPartiallyPaid))
	assert.False(t, BillingFullyPaid.CanTransition(BillingOverdue))
	assert.False(t, BillingPartiallyPaid.CanTransition(BillingUnpaid))
	assert.False(t, BillingCancelled.CanTransition(BillingUnpaid))
	assert.False(t, BillingCancelled.CanTransition(BillingCancelled))
}

func TestBillingAmounts(t *testing.T) {
	b := Billing{
		Amount:     dec("1000"),
		LateFee:    dec("50"),
		PaidAmount: dec("200"),
	}
	assert.True(t, dec("1050").Equal(b.TotalOwed()))
	assert.True(t, dec("850").Equal(b.Outstanding()))

	b.PaidAmount = dec("1050.01")
	assert.True(t, b.Outstanding().IsZero(), "outstanding never goes negative")
}
