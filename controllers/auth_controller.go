package controllers

import (
	"net/http"
	"os"

	"cloud.google.com/go/auth/credentials/idtoken"
	"github.com/gin-gonic/gin"

	"github.com/vnkhanh/devlearn-backend/config"
	"github.com/vnkhanh/devlearn-backend/models"
	"github.com/vnkhanh/devlearn-backend/services"
	"github.com/vnkhanh/devlearn-backend/utils"
)

// ====== INPUT STRUCTS ======
type RegisterInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type GoogleLoginInput struct {
	IDToken string `json:"idToken" binding:"required"`
}

// validateGoogleToken tách ra để test thay thế
var validateGoogleToken = idtoken.Validate

// ====== HANDLERS ======

// POST /api/auth/register
func Register(c *gin.Context) {
	var input RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.NewUserStore(config.DB).
		Register(c.Request.Context(), input.Email, input.Password, input.FullName, models.RoleStudent)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered successfully",
		"user":    user,
	})
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var input LoginInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := services.NewUserStore(config.DB).Authenticate(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	respondWithToken(c, user)
}

// POST /api/auth/google
func GoogleLogin(c *gin.Context) {
	var input GoogleLoginInput
	if !bindJSON(c, &input) {
		return
	}

	// Xác minh token với đúng GOOGLE_CLIENT_ID
	payload, err := validateGoogleToken(c.Request.Context(), input.IDToken, os.Getenv("GOOGLE_CLIENT_ID"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid Google token"})
		return
	}

	// Chỉ tin email đã được Google xác minh
	if verified, _ := payload.Claims["email_verified"].(bool); !verified {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Google email is not verified"})
		return
	}

	email, _ := payload.Claims["email"].(string)
	fullName, _ := payload.Claims["name"].(string)

	user, err := services.NewUserStore(config.DB).FindOrCreateByEmail(c.Request.Context(), email, fullName)
	if err != nil {
		respondError(c, err)
		return
	}

	respondWithToken(c, user)
}

func respondWithToken(c *gin.Context, user *models.User) {
	token, err := utils.GenerateToken(user.ID.String(), string(user.Role))
	if err != nil {
		respondError(c, services.NewInternalError("Cannot issue token", err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"fullName": user.FullName,
			"role":     user.Role,
		},
	})
}
