// services/billing_service.go
package services

import (
	"errors"
	"fmt"

	"hostel-backend/models"

	"gorm.io/gorm"
)

// BillingService is the read/admin surface of the billing ledger. The
// money-moving writes live in PaymentService and LifecycleService.
type BillingService struct {
	DB *gorm.DB
}

func NewBillingService(db *gorm.DB) *BillingService {
	return &BillingService{DB: db}
}

func (s *BillingService) ByID(id uint) (*models.Billing, error) {
	var bill models.Billing
	if err := s.DB.First(&bill, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBillingNotFound
		}
		return nil, fmt.Errorf("failed to load billing %d: %w", id, err)
	}
	return &bill, nil
}

func (s *BillingService) ForStudent(studentID uint) ([]models.Billing, error) {
	var bills []models.Billing
	if err := s.DB.
		Where("student_id = ?", studentID).
		Order("date_issued DESC").
		Find(&bills).Error; err != nil {
		return nil, fmt.Errorf("failed to list billings: %w", err)
	}
	return bills, nil
}

// Cancel is the administrative cancellation: reachable from any
// non-terminal status, compare-and-set so a concurrent payment or job run
// surfaces as a conflict instead of being silently overwritten.
func (s *BillingService) Cancel(id uint) (*models.Billing, error) {
	bill, err := s.ByID(id)
	if err != nil {
		return nil, err
	}
	if !bill.Status.CanTransition(models.BillingCancelled) {
		return nil, ErrBillingCancelled
	}

	res := s.DB.Model(&models.Billing{}).
		Where("id = ? AND status = ?", bill.ID, bill.Status).
		Updates(map[string]interface{}{"status": models.BillingCancelled})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to cancel billing %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrConflict
	}

	bill.Status = models.BillingCancelled
	return bill, nil
}

// PaymentsFor lists the append-only payment ledger rows of one billing.
func (s *BillingService) PaymentsFor(billingID uint) ([]models.Payment, error) {
	var rows []models.Payment
	if err := s.DB.
		Where("billing_id = ?", billingID).
		Order("payment_date ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return rows, nil
}
