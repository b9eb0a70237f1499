// services/payment_service.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"hostel-backend/gateway"
	"hostel-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PaymentService tracks payment intents and reconciles gateway results onto
// the billing ledger.
type PaymentService struct {
	DB          *gorm.DB
	Gateway     gateway.API
	Allocations *AllocationService
	CallbackURL string
	Currency    string
}

func NewPaymentService(db *gorm.DB, gw gateway.API, allocations *AllocationService, callbackURL, currency string) *PaymentService {
	return &PaymentService{
		DB:          db,
		Gateway:     gw,
		Allocations: allocations,
		CallbackURL: callbackURL,
		Currency:    currency,
	}
}

type InitializeResult struct {
	Reference        string `json:"reference"`
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

type VerifyResult struct {
	Reference        string               `json:"reference"`
	BillingStatus    models.BillingStatus `json:"billing_status"`
	AmountCredited   decimal.Decimal      `json:"amount_credited"`
	RemainingBalance decimal.Decimal      `json:"remaining_balance"`
}

// paymentReference builds a globally unique, unguessable gateway reference.
func paymentReference(billingID, studentID uint) string {
	random := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("HSTL-%d-%d-%d-%s", billingID, studentID, time.Now().UnixNano(), random)
}

// InitializePayment authorizes a payment attempt with the gateway, then
// records a pending intent keyed by the reference. The gateway call happens
// first: if it fails no intent is written (fail closed); if the intent
// write fails afterwards the reference is simply orphaned and verification
// of it will not find an intent.
func (s *PaymentService) InitializePayment(ctx context.Context, callerID uint, isAdmin bool, billingID uint, amount decimal.Decimal, email, phone string) (*InitializeResult, error) {
	var bill models.Billing
	if err := s.DB.First(&bill, billingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingNotFound
		}
		return nil, fmt.Errorf("failed to load billing %d: %w", billingID, err)
	}

	if !isAdmin && bill.StudentID != callerID {
		return nil, ErrNotBillingOwner
	}
	if bill.Status == models.BillingCancelled {
		return nil, ErrBillingCancelled
	}
	if !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if amount.GreaterThan(bill.Outstanding()) {
		return nil, ErrAmountExceedsBalance
	}

	ref := paymentReference(bill.ID, bill.StudentID)
	resp, err := s.Gateway.Initialize(ctx, gateway.InitializeRequest{
		Email:       email,
		Amount:      gateway.ToMinor(amount),
		Currency:    s.Currency,
		Reference:   ref,
		CallbackURL: s.CallbackURL,
		Metadata: map[string]any{
			"billing_id": bill.ID,
			"student_id": bill.StudentID,
			"phone":      phone,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayError, err)
	}
	if resp.Reference != "" {
		ref = resp.Reference
	}

	intent := models.PaymentIntent{
		BillingID: bill.ID,
		StudentID: bill.StudentID,
		Amount:    amount,
		Reference: ref,
		Status:    models.IntentPending,
	}
	if err := s.DB.Create(&intent).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment intent %s: %w", ref, err)
	}

	return &InitializeResult{
		Reference:        ref,
		AuthorizationURL: resp.AuthorizationURL,
		AccessCode:       resp.AccessCode,
	}, nil
}

// VerifyPayment reconciles a gateway result onto the billing ledger. Safe
// to call any number of times per reference: the intent's one-way
// pending->completed transition is checked-and-set inside the transaction,
// so exactly one call credits the billing and the rest get
// ErrAlreadyVerified. A transport failure leaves the intent pending so a
// later retry can still succeed; only an explicit gateway non-success marks
// it failed.
func (s *PaymentService) VerifyPayment(ctx context.Context, billingID uint, reference string) (*VerifyResult, error) {
	var intent models.PaymentIntent
	if err := s.DB.Where("reference = ?", reference).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to load payment intent %s: %w", reference, err)
	}
	if intent.BillingID != billingID {
		return nil, ErrReferenceNotFound
	}

	switch intent.Status {
	case models.IntentCompleted:
		return nil, ErrAlreadyVerified
	case models.IntentFailed:
		return nil, ErrPaymentNotSuccessful
	}

	v, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		// unknown outcome: the intent stays pending for a retry
		return nil, fmt.Errorf("%w: %v", ErrGatewayError, err)
	}

	if !v.Success() {
		// explicit decline is terminal for this reference
		res := s.DB.Model(&models.PaymentIntent{}).
			Where("id = ? AND status = ?", intent.ID, models.IntentPending).
			Updates(map[string]interface{}{"status": models.IntentFailed})
		if res.Error != nil {
			return nil, fmt.Errorf("failed to mark intent %s failed: %w", reference, res.Error)
		}
		return nil, ErrPaymentNotSuccessful
	}

	// the gateway's captured amount is authoritative, never the client's
	verified := gateway.FromMinor(v.Amount)
	meta, _ := json.Marshal(map[string]any{
		"channel":          v.Channel,
		"transaction_id":   v.TransactionID,
		"gateway_response": v.GatewayResponse,
		"paid_at":          v.PaidAt,
	})

	var out *VerifyResult
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// one-way transition doubles as the idempotency gate; a concurrent
		// verify of the same reference loses this CAS
		res := tx.Model(&models.PaymentIntent{}).
			Where("id = ? AND status = ?", intent.ID, models.IntentPending).
			Updates(map[string]interface{}{
				"status":   models.IntentCompleted,
				"metadata": datatypes.JSON(meta),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to complete intent %s: %w", reference, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyVerified
		}

		var bill models.Billing
		if err := tx.First(&bill, intent.BillingID).Error; err != nil {
			return fmt.Errorf("failed to load billing %d: %w", intent.BillingID, err)
		}
		if bill.Status == models.BillingCancelled {
			return ErrBillingCancelled
		}

		totalOwed := bill.TotalOwed()
		newPaid := bill.PaidAmount.Add(verified)
		if newPaid.GreaterThan(totalOwed.Add(models.PaidEpsilon)) {
			log.Printf("INVARIANT: billing %d would be overpaid (%s of %s) by reference %s",
				bill.ID, newPaid, totalOwed, reference)
			return ErrInvariantViolation
		}
		newStatus := models.BillingStatusFor(newPaid, totalOwed)

		paidAt := time.Now().UTC()
		if t, perr := time.Parse(time.RFC3339, v.PaidAt); perr == nil {
			paidAt = t.UTC()
		}
		ledger := models.Payment{
			BillingID:    bill.ID,
			Amount:       verified,
			PaymentDate:  paidAt,
			Method:       v.Channel,
			Status:       "completed",
			Reference:    reference,
			GatewayTxnID: fmt.Sprintf("%d", v.TransactionID),
		}
		if err := tx.Create(&ledger).Error; err != nil {
			return fmt.Errorf("failed to append payment row: %w", err)
		}

		// CAS on the previous paid amount: a concurrent credit through a
		// different reference shows up as a conflict, never a lost update
		res = tx.Model(&models.Billing{}).
			Where("id = ? AND paid_amount = ? AND status = ?", bill.ID, bill.PaidAmount, bill.Status).
			Updates(map[string]interface{}{"paid_amount": newPaid, "status": newStatus})
		if res.Error != nil {
			return fmt.Errorf("failed to credit billing %d: %w", bill.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := s.Allocations.activateIfThresholdMet(tx, bill.AllocationID, newPaid, bill.Amount); err != nil {
			return err
		}

		remaining := totalOwed.Sub(newPaid)
		if remaining.IsNegative() {
			remaining = decimal.Zero
		}
		out = &VerifyResult{
			Reference:        reference,
			BillingStatus:    newStatus,
			AmountCredited:   verified,
			RemainingBalance: remaining,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyByReference resolves the billing from the intent and verifies; used
// by the gateway's redirect callback, which only carries the reference.
func (s *PaymentService) VerifyByReference(ctx context.Context, reference string) (*VerifyResult, error) {
	var intent models.PaymentIntent
	if err := s.DB.Where("reference = ?", reference).First(&intent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReferenceNotFound
		}
		return nil, fmt.Errorf("failed to load payment intent %s: %w", reference, err)
	}
	return s.VerifyPayment(ctx, intent.BillingID, reference)
}
