package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type IntentStatus string

const (
	IntentPending   IntentStatus = "pending"
	IntentCompleted IntentStatus = "completed"
	IntentFailed    IntentStatus = "failed"
)

// PaymentIntent records a pending gateway payment attempt. The unique
// reference doubles as the idempotency key for verification: the one-way
// pending -> completed/failed transition is what makes retried verify
// calls safe.
type PaymentIntent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	BillingID uint `gorm:"index;column:billing_id" json:"billing_id"`
	StudentID uint `gorm:"index;column:student_id" json:"student_id"`

	Amount    decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"` // requested, not credited
	Reference string          `gorm:"uniqueIndex;size:120" json:"reference"`
	Status    IntentStatus    `gorm:"size:32" json:"status"`

	// Raw gateway verification payload snapshot (channel, transaction id).
	Metadata datatypes.JSON `gorm:"column:metadata" json:"metadata,omitempty"`

	Billing Billing `gorm:"foreignKey:BillingID" json:"billing,omitempty"`
}

// Payment is an append-only ledger entry, one row per verified gateway
// transaction. Rows are never updated or deleted.
type Payment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BillingID uint `gorm:"index;column:billing_id" json:"billing_id"`

	Amount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"amount"`
	PaymentDate time.Time       `gorm:"column:payment_date" json:"payment_date"`
	Method      string          `gorm:"size:64" json:"method"`
	Status      string          `gorm:"size:32" json:"status"`

	Reference    string `gorm:"size:120;index" json:"reference"`
	GatewayTxnID string `gorm:"column:gateway_txn_id;size:120" json:"gateway_txn_id,omitempty"`

	Billing Billing `gorm:"foreignKey:BillingID" json:"billing,omitempty"`
}
