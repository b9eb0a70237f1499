// controllers/room_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"hostel-backend/models"
	"hostel-backend/services"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
)

type RoomController struct {
	Rooms *services.RoomService
}

func NewRoomController(rooms *services.RoomService) *RoomController {
	return &RoomController{Rooms: rooms}
}

// GetRooms (GET /api/rooms?status=&gender=&building=&bookable=)
func (ctrl *RoomController) GetRooms(c *gin.Context) {
	filter := services.RoomFilter{
		Status:   models.RoomStatus(c.Query("status")),
		Gender:   models.Gender(c.Query("gender")),
		Building: c.Query("building"),
		Bookable: c.Query("bookable") == "true",
	}

	rooms, err := ctrl.Rooms.List(filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, rooms)
}

// GetRoom (GET /api/rooms/:id)
func (ctrl *RoomController) GetRoom(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	room, err := ctrl.Rooms.GetByID(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// CreateRoom (POST /api/rooms, admin)
func (ctrl *RoomController) CreateRoom(c *gin.Context) {
	var room models.Room
	if err := c.ShouldBindJSON(&room); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "Invalid room payload: "+err.Error())
		return
	}

	if err := ctrl.Rooms.Create(&room); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, room)
}

type maintenancePayload struct {
	Maintenance *bool `json:"maintenance" binding:"required"`
}

// SetMaintenance (PATCH /api/rooms/:id/maintenance, admin)
func (ctrl *RoomController) SetMaintenance(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var payload maintenancePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "maintenance flag required")
		return
	}

	room, err := ctrl.Rooms.SetMaintenance(id, *payload.Maintenance)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// paramID parses the :id path segment, answering 400 itself on garbage.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid_id", "Invalid id in path.")
		return 0, false
	}
	return uint(id), true
}
