// controllers/auth_controller.go
package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"hostel-backend/middleware"
	"hostel-backend/models"
	"hostel-backend/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const tokenTTL = 24 * time.Hour

type loginPayload struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthController struct {
	DB        *gorm.DB
	JWTSecret string
}

func NewAuthController(db *gorm.DB, jwtSecret string) *AuthController {
	return &AuthController{DB: db, JWTSecret: jwtSecret}
}

// Login authenticates a student (by email) or an admin (by username) and
// issues a bearer token carrying the role the rest of the API consumes.
func (ctrl *AuthController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid_payload", "username and password required")
		return
	}
	username := strings.TrimSpace(payload.Username)

	var admin models.Admin
	if err := ctrl.DB.Where("username = ?", username).First(&admin).Error; err == nil {
		ctrl.finishLogin(c, admin.ID, middleware.RoleAdmin, admin.Password, payload.Password)
		return
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		respondServiceError(c, err)
		return
	}

	var student models.Student
	if err := ctrl.DB.Where("email = ?", username).First(&student).Error; err != nil {
		// same answer whether the account exists or the password is wrong
		utils.JSONError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password.")
		return
	}
	ctrl.finishLogin(c, student.ID, middleware.RoleStudent, student.Password, payload.Password)
}

func (ctrl *AuthController) finishLogin(c *gin.Context, actorID uint, role, storedHash, password string) {
	if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
		utils.JSONError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password.")
		return
	}

	token, err := middleware.SignToken(ctrl.JWTSecret, actorID, role, tokenTTL)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"token": token,
		"role":  role,
		"id":    actorID,
	})
}
