// controllers/billing_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"hostel-backend/middleware"
	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
)

type BillingController struct {
	Billings *services.BillingService
}

func NewBillingController(billings *services.BillingService) *BillingController {
	return &BillingController{Billings: billings}
}

// GetBillings (GET /api/billings): the caller's own bills; admins may pass
// ?student_id= to inspect another student's.
func (ctrl *BillingController) GetBillings(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	studentID := actorID
	if middleware.IsAdmin(c) {
		if qid, ok := queryID(c, "student_id"); ok {
			studentID = qid
		}
	}

	bills, err := ctrl.Billings.ForStudent(studentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bills)
}

// GetBilling (GET /api/billings/:id)
func (ctrl *BillingController) GetBilling(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	bill, err := ctrl.Billings.ByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	actorID, _ := middleware.ActorFrom(c)
	if !middleware.IsAdmin(c) && bill.StudentID != actorID {
		utils.JSONError(c, http.StatusForbidden, "not_billing_owner", "You can only view your own bills.")
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

// GetBillingPayments (GET /api/billings/:id/payments)
func (ctrl *BillingController) GetBillingPayments(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	bill, err := ctrl.Billings.ByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	actorID, _ := middleware.ActorFrom(c)
	if !middleware.IsAdmin(c) && bill.StudentID != actorID {
		utils.JSONError(c, http.StatusForbidden, "not_billing_owner", "You can only view your own bills.")
		return
	}

	payments, err := ctrl.Billings.PaymentsFor(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, payments)
}

// CancelBilling (POST /api/billings/:id/cancel, admin)
func (ctrl *BillingController) CancelBilling(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	bill, err := ctrl.Billings.Cancel(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bill)
}

// queryID parses an optional numeric query parameter.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
