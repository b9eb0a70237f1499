// controllers/errors.go
package controllers

import (
	"errors"
	"log"
	"net/http"

	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
)

type errorMapping struct {
	status  int
	message string
}

// Every service failure kind gets a distinct, actionable message. Anything
// unmapped is an internal error and is logged, not leaked.
var serviceErrorMap = map[error]errorMapping{
	services.ErrStudentNotFound:    {http.StatusNotFound, "Student not found."},
	services.ErrRoomNotFound:       {http.StatusNotFound, "Room not found."},
	services.ErrBillingNotFound:    {http.StatusNotFound, "Billing record not found."},
	services.ErrAllocationNotFound: {http.StatusNotFound, "No room allocation found."},

	services.ErrOutstandingDebt: {http.StatusConflict, "You cannot book a new room while you have outstanding overdue bills."},
	services.ErrAlreadyAllocated: {http.StatusConflict, "You already have a room allocation. Cancel or complete it before booking again."},
	services.ErrGenderMismatch:  {http.StatusForbidden, "This room is not available for your gender."},
	services.ErrRoomUnavailable: {http.StatusConflict, "This room is under maintenance and cannot be booked."},
	services.ErrRoomReserved:    {http.StatusConflict, "This room is reserved and cannot be booked."},
	services.ErrRoomFull:        {http.StatusConflict, "This room is already at full capacity."},
	services.ErrRoomOccupied:    {http.StatusConflict, "A room with residents cannot be put under maintenance."},
	services.ErrDuplicateRoom:   {http.StatusConflict, "A room with that number already exists in this building."},
	services.ErrInvalidRoom:     {http.StatusBadRequest, "Invalid room details."},

	services.ErrNotBillingOwner:      {http.StatusForbidden, "You can only pay your own bills."},
	services.ErrBillingCancelled:     {http.StatusConflict, "This billing has been cancelled and can no longer be paid."},
	services.ErrInvalidAmount:        {http.StatusBadRequest, "Payment amount must be greater than zero."},
	services.ErrAmountExceedsBalance: {http.StatusBadRequest, "Payment amount exceeds the outstanding balance."},

	services.ErrReferenceNotFound:    {http.StatusNotFound, "Unknown payment reference."},
	services.ErrPaymentNotSuccessful: {http.StatusPaymentRequired, "The payment was not successful. Start a new payment to try again."},
	services.ErrGatewayError:         {http.StatusBadGateway, "The payment provider could not be reached. Please try again shortly."},

	services.ErrConflict: {http.StatusConflict, "The record changed while processing your request. Please retry."},
}

// respondServiceError translates a service error into the HTTP boundary.
// ErrAlreadyVerified is handled by the payment controller before reaching
// here because it is a non-error "already done" signal there.
func respondServiceError(c *gin.Context, err error) {
	for sentinel, m := range serviceErrorMap {
		if errors.Is(err, sentinel) {
			utils.JSONError(c, m.status, sentinel.Error(), m.message)
			return
		}
	}
	if errors.Is(err, services.ErrAlreadyVerified) {
		utils.JSONError(c, http.StatusConflict, services.ErrAlreadyVerified.Error(),
			"This payment reference has already been verified.")
		return
	}
	if errors.Is(err, services.ErrInvariantViolation) {
		log.Printf("INVARIANT violation surfaced to handler: %v", err)
	} else {
		log.Printf("internal error: %v", err)
	}
	utils.JSONError(c, http.StatusInternalServerError, "internal_error", "Something went wrong. Please try again.")
}
