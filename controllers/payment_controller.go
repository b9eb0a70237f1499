// controllers/payment_controller.go
package controllers

import (
	"errors"
	"net/http"

	"hostel-backend/middleware"
	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type PaymentController struct {
	Payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{Payments: payments}
}

type initializePaymentPayload struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Email  string          `json:"email" binding:"required,email"`
	Phone  string          `json:"phone"`
}

// InitializePayment (POST /api/billings/:id/payments): authorizes a payment
// attempt with the gateway and returns the redirect URL.
func (ctrl *PaymentController) InitializePayment(c *gin.Context) {
	billingID, ok := paramID(c)
	if !ok {
		return
	}

	var payload initializePaymentPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "amount and email are required")
		return
	}

	actorID, _ := middleware.ActorFrom(c)
	result, err := ctrl.Payments.InitializePayment(
		c.Request.Context(), actorID, middleware.IsAdmin(c),
		billingID, payload.Amount, payload.Email, payload.Phone)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// VerifyPayment (GET /api/billings/:id/payments/verify?reference=): client
// retries and gateway redirects can both land here repeatedly, so
// "already verified" is answered as success without touching anything.
func (ctrl *PaymentController) VerifyPayment(c *gin.Context) {
	billingID, ok := paramID(c)
	if !ok {
		return
	}
	reference := c.Query("reference")
	if reference == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "reference is required")
		return
	}

	result, err := ctrl.Payments.VerifyPayment(c.Request.Context(), billingID, reference)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyVerified) {
			utils.JSONSuccess(c, http.StatusOK, gin.H{"reference": reference, "status": "already_verified"})
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}

// GatewayCallback (GET /api/payments/callback?reference=): the redirect leg
// of the gateway flow; carries only the reference.
func (ctrl *PaymentController) GatewayCallback(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		reference = c.Query("trxref")
	}
	if reference == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "reference is required")
		return
	}

	result, err := ctrl.Payments.VerifyByReference(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyVerified) {
			utils.JSONSuccess(c, http.StatusOK, gin.H{"reference": reference, "status": "already_verified"})
			return
		}
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, result)
}
