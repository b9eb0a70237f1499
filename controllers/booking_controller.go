// controllers/booking_controller.go
package controllers

import (
	"net/http"
	"time"

	"hostel-backend/middleware"
	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
)

type BookingController struct {
	Allocations *services.AllocationService
}

func NewBookingController(allocations *services.AllocationService) *BookingController {
	return &BookingController{Allocations: allocations}
}

type createBookingPayload struct {
	RoomID uint `json:"room_id" binding:"required"`
	// admins may book on behalf of a student
	StudentID uint   `json:"student_id"`
	EndDate   string `json:"end_date"` // YYYY-MM-DD, optional
}

// CreateBooking (POST /api/bookings): books a room for the calling student
// as one atomic transaction.
func (ctrl *BookingController) CreateBooking(c *gin.Context) {
	var payload createBookingPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "room_id is required")
		return
	}

	actorID, role := middleware.ActorFrom(c)
	studentID := actorID
	if role == middleware.RoleAdmin {
		if payload.StudentID == 0 {
			utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "student_id is required when booking as admin")
			return
		}
		studentID = payload.StudentID
	}

	var endDate *time.Time
	if payload.EndDate != "" {
		t, err := time.Parse("2006-01-02", payload.EndDate)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "end_date must be YYYY-MM-DD")
			return
		}
		if !t.After(time.Now()) {
			utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "end_date must be in the future")
			return
		}
		endDate = &t
	}

	alloc, err := ctrl.Allocations.BookRoom(studentID, payload.RoomID, endDate)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, alloc)
}

// GetMyAllocation (GET /api/allocations/me)
func (ctrl *BookingController) GetMyAllocation(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	alloc, err := ctrl.Allocations.ActiveAllocation(actorID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, alloc)
}

// GetAllocationHistory (GET /api/allocations): the caller's own history, or
// any student's via ?student_id= for admins.
func (ctrl *BookingController) GetAllocationHistory(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	studentID := actorID
	if middleware.IsAdmin(c) {
		if qid, ok := queryID(c, "student_id"); ok {
			studentID = qid
		}
	}

	list, err := ctrl.Allocations.HistoryForStudent(studentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, list)
}
